package models

import "time"

// Otp is a one-time code for email verification or password reset
// (PostgreSQL). Requesting a new code supersedes all earlier codes for
// the same email; a successful verification consumes them.
type Otp struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"index"`
	Code      string    `json:"-" gorm:"size:6"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the code is past its validity window.
func (o *Otp) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
