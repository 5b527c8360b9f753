package models

import "time"

// Like represents a user's like on a post.
// The combination of PostID and Username must be unique; this is what
// makes toggle-like idempotent under concurrent calls. No soft delete:
// a removed like must free the pair for a later re-like.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_like_post_user" json:"post_id"`
	Username  string    `gorm:"not null;uniqueIndex:idx_like_post_user" json:"username"`
	CreatedAt time.Time `json:"created_at"`
}
