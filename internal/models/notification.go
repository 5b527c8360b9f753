package models

import "time"

// NotificationType identifies the event that produced a notification.
type NotificationType string

const (
	NotificationFollowRequest  NotificationType = "follow_request"
	NotificationFollow         NotificationType = "follow"
	NotificationFollowAccepted NotificationType = "follow_accepted"
	NotificationLike           NotificationType = "like"
	NotificationComment        NotificationType = "comment"
)

// Notification is an append-only per-recipient event record. Only the
// Seen flag is ever mutated after insert.
type Notification struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	ToUsername   string           `gorm:"not null;index:idx_notifications_recipient" json:"to_username"`
	FromUsername string           `gorm:"not null" json:"from_username"`
	Type         NotificationType `gorm:"type:varchar(32);not null" json:"type"`
	PostID       *uint            `gorm:"index" json:"post_id,omitempty"`
	Seen         bool             `gorm:"not null;default:false" json:"seen"`
	CreatedAt    time.Time        `json:"created_at"`
}
