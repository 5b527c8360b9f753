// Package models contains data structures for the application's domain models.
package models

import "time"

// RelationshipStatus represents the status of a directed follow edge.
type RelationshipStatus string

const (
	// RelationshipStatusPending indicates a follow request awaiting approval.
	RelationshipStatusPending RelationshipStatus = "pending"
	// RelationshipStatusAccepted indicates an active follow.
	RelationshipStatusAccepted RelationshipStatus = "accepted"
	// RelationshipStatusBlocked indicates FromUsername has blocked ToUsername.
	RelationshipStatusBlocked RelationshipStatus = "blocked"
)

// Viewer-relative labels derived from the edge graph. These are not
// stored; Status/BatchStatus compute them from at most two lookups.
const (
	StatusLabelSelf            = "self"
	StatusLabelFollowing       = "following"
	StatusLabelPending         = "pending"
	StatusLabelBlocked         = "blocked"
	StatusLabelIncomingRequest = "incoming_request"
	StatusLabelNone            = "none"
)

// Relationship is a directed edge between two usernames.
// At most one edge may exist per ordered (from, to) pair; the unique
// index is the only concurrency control follow/block races rely on.
type Relationship struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	FromUsername string             `gorm:"not null;uniqueIndex:idx_relationship_pair" json:"from_username"`
	ToUsername   string             `gorm:"not null;uniqueIndex:idx_relationship_pair" json:"to_username"`
	Status       RelationshipStatus `gorm:"type:varchar(20);not null;index:idx_relationships_status" json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Relationship) TableName() string {
	return "relationships"
}
