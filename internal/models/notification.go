package models

import "time"

// Notification types emitted by the fanout path.
const (
	NotificationFollow      = "follow"
	NotificationUnfollow    = "unfollow"
	NotificationUpvote      = "upvote"
	NotificationDownvote    = "downvote"
	NotificationComment     = "comment"
	NotificationCommentLike = "comment_like"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Type        string    `json:"type" gorm:"size:30;index"`
	ActorID     uint      `json:"actor_id" gorm:"index"`
	RecipientID uint      `json:"recipient_id" gorm:"index"`
	TargetID    string    `json:"target_id" gorm:"index"` // content/comment ObjectID hex, or user ID for follows
	TargetKind  string    `json:"target_kind" gorm:"size:20"`
	Message     string    `json:"message"`
	IsRead      bool      `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}
