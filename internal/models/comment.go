// Package models contains data structures for the application's domain models.
package models

import "time"

// Comment represents a comment on a post in the Wire application.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Author    string    `gorm:"not null" json:"author"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
