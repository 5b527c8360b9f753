package repository

import (
	"context"

	"github.com/md2004sameer/Wire/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for the per-recipient
// notification log. The log is append-only; only Seen is ever updated.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListForRecipient(ctx context.Context, recipient string, limit, offset int) ([]models.Notification, error)
	MarkSeen(ctx context.Context, recipient string, id uint) error
	CountUnseen(ctx context.Context, recipient string) (int64, error)
}

// notificationRepository implements NotificationRepository
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ListForRecipient(ctx context.Context, recipient string, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	if err := r.db.WithContext(ctx).
		Where("to_username = ?", recipient).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

// MarkSeen flips the seen flag. Scoped to the recipient so a caller
// can never mark another user's notifications.
func (r *notificationRepository) MarkSeen(ctx context.Context, recipient string, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND to_username = ?", id, recipient).
		Update("seen", true)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (r *notificationRepository) CountUnseen(ctx context.Context, recipient string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("to_username = ? AND seen = ?", recipient, false).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
