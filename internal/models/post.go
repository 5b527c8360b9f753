// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a post in the Wire application. Interaction counters
// are persisted on the row; LikeCount must never go negative.
type Post struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Author       string         `gorm:"not null;index" json:"author"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	LikeCount    int            `gorm:"not null;default:0" json:"like_count"`
	CommentCount int            `gorm:"not null;default:0" json:"comment_count"`
	ShareCount   int            `gorm:"not null;default:0" json:"share_count"`
	// Liked indicates whether the requesting user liked this post (computed)
	Liked     bool           `gorm:"->;-:migration" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
