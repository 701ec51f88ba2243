package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents a registered account (PostgreSQL)
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:50"`
	Email          string    `json:"email" gorm:"uniqueIndex"` // Ensure email is unique across all users
	Password       string    `json:"-"`                        // Store hashed password, ignore for JSON serialization
	IsVerified     bool      `json:"is_verified" gorm:"default:false"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture" gorm:"default:'/images/default-avatar.png'"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserCompact is the trimmed-down user shape embedded in other responses
type UserCompact struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
}

// ToCompact converts a User to its compact representation
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
	}
}

// SignupRequest defines the request body for local registration
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest defines the request body for login; identifier is email or username
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// VerifyEmailRequest defines the request body for OTP email verification
type VerifyEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Otp   string `json:"otp" validate:"required,len=6"`
}

// ResetPasswordRequest defines the request body for OTP password reset
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Otp         string `json:"otp" validate:"required,len=6"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ChangePasswordRequest defines the request body for an authenticated password change
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// UpdateBioRequest defines the request body for updating the profile bio
type UpdateBioRequest struct {
	Bio string `json:"bio" validate:"max=500"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}
