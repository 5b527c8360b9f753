package repository

import (
	"context"
	"errors"
	"time"

	"github.com/md2004sameer/Wire/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations,
// including the interaction counters embedded on the post row.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, viewer string, limit, offset int, after *time.Time) ([]models.Post, error)
	ToggleLike(ctx context.Context, postID uint, username string) (liked bool, err error)
	IncrementShare(ctx context.Context, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

// List returns posts newest-first with the viewer-relative liked flag
// computed in the same query. An empty viewer yields liked=false.
func (r *postRepository) List(ctx context.Context, viewer string, limit, offset int, after *time.Time) ([]models.Post, error) {
	var posts []models.Post

	q := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("posts.*, EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.username = ?) AS liked", viewer).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset)
	if after != nil {
		q = q.Where("created_at > ?", *after)
	}

	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ToggleLike flips the like state for (postID, username) and keeps
// like_count consistent in the same transaction. The unique index on
// the pair resolves concurrent toggles; the decrement is conditioned
// on like_count > 0 so the counter can never go negative even if a
// racing unlike slips through.
func (r *postRepository) ToggleLike(ctx context.Context, postID uint, username string) (bool, error) {
	var liked bool

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.First(&post, postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", postID)
			}
			return err
		}

		res := tx.Where("post_id = ? AND username = ?", postID, username).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected > 0 {
			liked = false
			return tx.Model(&models.Post{}).
				Where("id = ? AND like_count > 0", postID).
				UpdateColumn("like_count", gorm.Expr("like_count - 1")).Error
		}

		if err := tx.Create(&models.Like{PostID: postID, Username: username}).Error; err != nil {
			if isDuplicateKey(err) {
				return models.NewConflictError("Post already liked")
			}
			return err
		}
		liked = true
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return false, appErr
		}
		return false, models.NewInternalError(err)
	}
	return liked, nil
}

// IncrementShare bumps share_count unconditionally. A zero-match
// update is how a missing post is detected.
func (r *postRepository) IncrementShare(ctx context.Context, postID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("share_count", gorm.Expr("share_count + 1"))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", postID)
	}
	return nil
}
