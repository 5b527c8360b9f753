package repository

import (
	"context"
	"testing"

	"github.com/md2004sameer/Wire/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_ToggleLikeIsIdempotentPerUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Author: "alice", Content: "hello"}
	require.NoError(t, repo.Create(ctx, post))

	liked, err := repo.ToggleLike(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.True(t, liked)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LikeCount)

	// Toggling back restores the original count.
	liked, err = repo.ToggleLike(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.False(t, liked)

	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikeCount)

	// And the pair is free for a re-like.
	liked, err = repo.ToggleLike(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.True(t, liked)
}

func TestPostRepository_LikeCountTracksDistinctUsers(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Author: "alice", Content: "hello"}
	require.NoError(t, repo.Create(ctx, post))

	for _, user := range []string{"bob", "carol", "dave"} {
		_, err := repo.ToggleLike(ctx, post.ID, user)
		require.NoError(t, err)
	}

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.LikeCount)
}

func TestPostRepository_LikeCountNeverNegative(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	post := &models.Post{Author: "alice", Content: "hello"}
	require.NoError(t, repo.Create(ctx, post))

	// Force the inconsistent state a lost update could produce: a like
	// row with a zero counter. The guarded decrement must not go below
	// zero when the like is removed.
	require.NoError(t, db.Create(&models.Like{PostID: post.ID, Username: "bob"}).Error)

	liked, err := repo.ToggleLike(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.False(t, liked)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.LikeCount)
}

func TestPostRepository_ToggleLikeMissingPost(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))

	_, err := repo.ToggleLike(context.Background(), 999, "bob")
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestPostRepository_ListSetsViewerLikedFlag(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	first := &models.Post{Author: "alice", Content: "first"}
	second := &models.Post{Author: "alice", Content: "second"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	_, err := repo.ToggleLike(ctx, first.ID, "bob")
	require.NoError(t, err)

	posts, err := repo.List(ctx, "bob", 10, 0, nil)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	byID := map[uint]models.Post{}
	for _, p := range posts {
		byID[p.ID] = p
	}
	assert.True(t, byID[first.ID].Liked)
	assert.False(t, byID[second.ID].Liked)

	// Anonymous viewers never see liked=true.
	posts, err = repo.List(ctx, "", 10, 0, nil)
	require.NoError(t, err)
	for _, p := range posts {
		assert.False(t, p.Liked)
	}
}

func TestPostRepository_IncrementShare(t *testing.T) {
	repo := NewPostRepository(newTestDB(t))
	ctx := context.Background()

	post := &models.Post{Author: "alice", Content: "hello"}
	require.NoError(t, repo.Create(ctx, post))

	require.NoError(t, repo.IncrementShare(ctx, post.ID))
	require.NoError(t, repo.IncrementShare(ctx, post.ID))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ShareCount)

	err = repo.IncrementShare(ctx, 999)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestCommentRepository_AddKeepsCounterConsistent(t *testing.T) {
	db := newTestDB(t)
	postRepo := NewPostRepository(db)
	commentRepo := NewCommentRepository(db)
	ctx := context.Background()

	post := &models.Post{Author: "alice", Content: "hello"}
	require.NoError(t, postRepo.Create(ctx, post))

	require.NoError(t, commentRepo.Add(ctx, &models.Comment{
		PostID: post.ID, Author: "bob", Text: "first",
	}))
	require.NoError(t, commentRepo.Add(ctx, &models.Comment{
		PostID: post.ID, Author: "carol", Text: "second",
	}))

	got, err := postRepo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)

	comments, err := commentRepo.ListForPost(ctx, post.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Text, "comments list oldest-first")
}

func TestCommentRepository_AddToMissingPost(t *testing.T) {
	repo := NewCommentRepository(newTestDB(t))

	err := repo.Add(context.Background(), &models.Comment{PostID: 999, Author: "bob", Text: "hi"})
	require.Error(t, err)

	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestNotificationRepository_MarkSeenScopedToRecipient(t *testing.T) {
	repo := NewNotificationRepository(newTestDB(t))
	ctx := context.Background()

	n := &models.Notification{ToUsername: "alice", FromUsername: "bob", Type: models.NotificationFollow}
	require.NoError(t, repo.Create(ctx, n))

	err := repo.MarkSeen(ctx, "mallory", n.ID)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	require.NoError(t, repo.MarkSeen(ctx, "alice", n.ID))

	count, err := repo.CountUnseen(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, count)
}
