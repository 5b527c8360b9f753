// Package service contains the business logic for the follow graph,
// interaction counters, posts and notifications.
package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/md2004sameer/Wire/internal/models"
	"github.com/md2004sameer/Wire/internal/observability"
	"github.com/md2004sameer/Wire/internal/repository"
)

// UserPublisher pushes an encoded payload to one user's live
// connections. Implemented by realtime.Notifier; nil disables push.
type UserPublisher interface {
	PublishUser(ctx context.Context, username, payload string) error
}

// NotificationService owns the append-only per-recipient event log.
// Writes are at-least-once relative to the state change that triggered
// them: a failed append is logged but never rolls the trigger back.
type NotificationService struct {
	repo      repository.NotificationRepository
	publisher UserPublisher
}

// NewNotificationService returns a new NotificationService.
func NewNotificationService(repo repository.NotificationRepository, publisher UserPublisher) *NotificationService {
	return &NotificationService{repo: repo, publisher: publisher}
}

// Emit appends a notification and pushes it to the recipient's live
// connections. Best-effort end to end; callers treat failures as
// logged-and-forgotten by design of the sink contract.
func (s *NotificationService) Emit(ctx context.Context, to, from string, typ models.NotificationType, postID *uint) {
	n := &models.Notification{
		ToUsername:   to,
		FromUsername: from,
		Type:         typ,
		PostID:       postID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		slog.ErrorContext(ctx, "notification write failed",
			slog.String("to", to),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationsEmitted.WithLabelValues(string(typ)).Inc()

	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(n)
	if err != nil {
		slog.ErrorContext(ctx, "notification marshal failed", slog.String("error", err.Error()))
		return
	}
	if err := s.publisher.PublishUser(ctx, to, string(payload)); err != nil {
		slog.WarnContext(ctx, "notification push failed",
			slog.String("to", to),
			slog.String("error", err.Error()),
		)
	}
}

// List returns the recipient's notifications newest-first.
func (s *NotificationService) List(ctx context.Context, recipient string, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListForRecipient(ctx, fold(recipient), limit, offset)
}

// MarkSeen flips the seen flag on one notification.
func (s *NotificationService) MarkSeen(ctx context.Context, recipient string, id uint) error {
	return s.repo.MarkSeen(ctx, fold(recipient), id)
}

// CountUnseen returns the number of unseen notifications.
func (s *NotificationService) CountUnseen(ctx context.Context, recipient string) (int64, error) {
	return s.repo.CountUnseen(ctx, fold(recipient))
}
