package repository

import (
	"context"
	"errors"
	"time"

	"github.com/md2004sameer/Wire/internal/models"

	"gorm.io/gorm"
)

// RelationshipRepository defines the interface for follow-graph edge operations.
// Callers pass usernames already case-folded; the storage layer treats
// them as opaque node identifiers.
type RelationshipRepository interface {
	Create(ctx context.Context, edge *models.Relationship) error
	Get(ctx context.Context, from, to string) (*models.Relationship, error)
	Transition(ctx context.Context, from, to string, fromStatus, toStatus models.RelationshipStatus) error
	DeleteWithStatus(ctx context.Context, from, to string, status models.RelationshipStatus) error
	ReplaceWithBlock(ctx context.Context, me, target string) error
	ListFrom(ctx context.Context, from string, status models.RelationshipStatus) ([]models.Relationship, error)
	ListTo(ctx context.Context, to string, status models.RelationshipStatus) ([]models.Relationship, error)
	OutgoingIn(ctx context.Context, viewer string, targets []string) ([]models.Relationship, error)
	IncomingPendingIn(ctx context.Context, viewer string, targets []string) ([]models.Relationship, error)
}

// relationshipRepository implements RelationshipRepository
type relationshipRepository struct {
	db *gorm.DB
}

// NewRelationshipRepository creates a new relationship repository
func NewRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &relationshipRepository{db: db}
}

// Create inserts a new edge. The unique index on (from, to) is the
// concurrency control for duplicate follow races: the loser gets a
// conflict error, never a second edge.
func (r *relationshipRepository) Create(ctx context.Context, edge *models.Relationship) error {
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		if isDuplicateKey(err) {
			return models.NewConflictError("Follow request already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Get returns the edge for the ordered pair, or (nil, nil) when none exists.
func (r *relationshipRepository) Get(ctx context.Context, from, to string) (*models.Relationship, error) {
	var edge models.Relationship
	if err := r.db.WithContext(ctx).
		Where("from_username = ? AND to_username = ?", from, to).
		First(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &edge, nil
}

// Transition moves the edge from one status to another. A zero-match
// update means there was no edge in the expected state.
func (r *relationshipRepository) Transition(ctx context.Context, from, to string, fromStatus, toStatus models.RelationshipStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Relationship{}).
		Where("from_username = ? AND to_username = ? AND status = ?", from, to, fromStatus).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Pending request from", from)
	}
	return nil
}

// DeleteWithStatus removes the edge only when it holds the given status.
func (r *relationshipRepository) DeleteWithStatus(ctx context.Context, from, to string, status models.RelationshipStatus) error {
	res := r.db.WithContext(ctx).
		Where("from_username = ? AND to_username = ? AND status = ?", from, to, status).
		Delete(&models.Relationship{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Relationship", from+" -> "+to)
	}
	return nil
}

// ReplaceWithBlock purges every edge between the pair in both
// directions and inserts a single blocked edge me -> target, all in
// one transaction so concurrent readers never observe the purged
// half-state.
func (r *relationshipRepository) ReplaceWithBlock(ctx context.Context, me, target string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("(from_username = ? AND to_username = ?) OR (from_username = ? AND to_username = ?)",
				me, target, target, me).
			Delete(&models.Relationship{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.Relationship{
			FromUsername: me,
			ToUsername:   target,
			Status:       models.RelationshipStatusBlocked,
		}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *relationshipRepository) ListFrom(ctx context.Context, from string, status models.RelationshipStatus) ([]models.Relationship, error) {
	var edges []models.Relationship
	if err := r.db.WithContext(ctx).
		Where("from_username = ? AND status = ?", from, status).
		Order("created_at DESC").
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return edges, nil
}

func (r *relationshipRepository) ListTo(ctx context.Context, to string, status models.RelationshipStatus) ([]models.Relationship, error) {
	var edges []models.Relationship
	if err := r.db.WithContext(ctx).
		Where("to_username = ? AND status = ?", to, status).
		Order("created_at DESC").
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return edges, nil
}

// OutgoingIn returns the viewer's outgoing edges to any of the targets
// in a single query. Together with IncomingPendingIn it lets
// BatchStatus label n targets with two lookups instead of n.
func (r *relationshipRepository) OutgoingIn(ctx context.Context, viewer string, targets []string) ([]models.Relationship, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	var edges []models.Relationship
	if err := r.db.WithContext(ctx).
		Where("from_username = ? AND to_username IN ?", viewer, targets).
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return edges, nil
}

// IncomingPendingIn returns pending edges from any of the targets to the viewer.
func (r *relationshipRepository) IncomingPendingIn(ctx context.Context, viewer string, targets []string) ([]models.Relationship, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	var edges []models.Relationship
	if err := r.db.WithContext(ctx).
		Where("to_username = ? AND status = ? AND from_username IN ?",
			viewer, models.RelationshipStatusPending, targets).
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return edges, nil
}
