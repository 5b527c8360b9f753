package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/md2004sameer/Wire/internal/models"
	"github.com/md2004sameer/Wire/internal/observability"
	"github.com/md2004sameer/Wire/internal/realtime"
	"github.com/md2004sameer/Wire/internal/repository"
)

const maxPostLength = 2000

// FeedPublisher fans a new post out to live feed subscribers.
// Implemented by realtime.FeedHub.
type FeedPublisher interface {
	PublishNewPost(post *models.Post)
}

// FeedBridge forwards feed events to other instances. Implemented by
// realtime.Notifier; nil keeps fan-out local.
type FeedBridge interface {
	PublishFeed(ctx context.Context, payload string) error
}

// PostService creates and lists posts and pushes new ones onto the
// live feed. Persistence is the source of truth; the live push is a
// best-effort side effect after commit.
type PostService struct {
	repo   repository.PostRepository
	feed   FeedPublisher
	bridge FeedBridge
}

// NewPostService returns a new PostService.
func NewPostService(repo repository.PostRepository, feed FeedPublisher, bridge FeedBridge) *PostService {
	return &PostService{repo: repo, feed: feed, bridge: bridge}
}

// Create persists the post and then publishes it to feed subscribers,
// locally and across instances. A failed publish is logged, never
// surfaced: the post exists regardless.
func (s *PostService) Create(ctx context.Context, author, content string) (*models.Post, error) {
	ctx, span := observability.Tracer.Start(ctx, "post.create",
		trace.WithAttributes(attribute.String("post.author", fold(author))))
	defer span.End()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Post content is required")
	}
	if len(content) > maxPostLength {
		return nil, models.NewValidationError("Post content is too long")
	}

	post := &models.Post{Author: fold(author), Content: content}
	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("post.id", int64(post.ID)))

	if s.feed != nil {
		s.feed.PublishNewPost(post)
	}
	if s.bridge != nil {
		payload, err := json.Marshal(realtime.FeedEvent{Type: realtime.EventNewPost, Post: post})
		if err == nil {
			if err := s.bridge.PublishFeed(ctx, string(payload)); err != nil {
				slog.WarnContext(ctx, "feed bridge publish failed", slog.String("error", err.Error()))
			}
		}
	}
	return post, nil
}

// Get returns one post by id.
func (s *PostService) Get(ctx context.Context, id uint) (*models.Post, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns posts newest-first with the viewer's liked flag set.
// after, when non-nil, restricts to posts created strictly later.
func (s *PostService) List(ctx context.Context, viewer string, limit, offset int, after *time.Time) ([]models.Post, error) {
	return s.repo.List(ctx, fold(viewer), limit, offset, after)
}
