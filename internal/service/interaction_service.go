package service

import (
	"context"
	"strings"

	"github.com/md2004sameer/Wire/internal/models"
	"github.com/md2004sameer/Wire/internal/repository"
)

const maxCommentLength = 1000

// InteractionService covers likes, comments and shares. Likes toggle;
// comments and shares only accumulate. Repeating an operation never
// skews the counters past what distinct actors did.
type InteractionService struct {
	postRepo      repository.PostRepository
	commentRepo   repository.CommentRepository
	notifications *NotificationService
}

// NewInteractionService returns a new InteractionService.
func NewInteractionService(postRepo repository.PostRepository, commentRepo repository.CommentRepository, notifications *NotificationService) *InteractionService {
	return &InteractionService{postRepo: postRepo, commentRepo: commentRepo, notifications: notifications}
}

// ToggleLike flips the caller's like on the post and returns the new
// state. The like notification fires only when a like is created, and
// never for the author liking their own post.
func (s *InteractionService) ToggleLike(ctx context.Context, username string, postID uint) (liked bool, err error) {
	username = fold(username)

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return false, err
	}

	liked, err = s.postRepo.ToggleLike(ctx, postID, username)
	if err != nil {
		return false, err
	}

	if liked && s.notifications != nil && post.Author != username {
		id := postID
		s.notifications.Emit(ctx, post.Author, username, models.NotificationLike, &id)
	}
	return liked, nil
}

// AddComment appends a comment and bumps the post's comment counter.
func (s *InteractionService) AddComment(ctx context.Context, username string, postID uint, text string) (*models.Comment, error) {
	username = fold(username)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Comment text is required")
	}
	if len(text) > maxCommentLength {
		return nil, models.NewValidationError("Comment text is too long")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: postID, Author: username, Text: text}
	if err := s.commentRepo.Add(ctx, comment); err != nil {
		return nil, err
	}

	if s.notifications != nil && post.Author != username {
		id := postID
		s.notifications.Emit(ctx, post.Author, username, models.NotificationComment, &id)
	}
	return comment, nil
}

// Comments lists a post's comments oldest-first.
func (s *InteractionService) Comments(ctx context.Context, postID uint, limit, offset int) ([]models.Comment, error) {
	return s.commentRepo.ListForPost(ctx, postID, limit, offset)
}

// Share bumps the post's share counter. Shares are anonymous on the
// wire, so no notification is emitted.
func (s *InteractionService) Share(ctx context.Context, postID uint) error {
	return s.postRepo.IncrementShare(ctx, postID)
}
