package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/md2004sameer/Wire/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedPublisherStub struct {
	published []*models.Post
}

func (s *feedPublisherStub) PublishNewPost(post *models.Post) {
	s.published = append(s.published, post)
}

func TestPostService_CreatePersistsThenPublishes(t *testing.T) {
	repo := &postRepoStub{
		createFn: func(_ context.Context, post *models.Post) error {
			post.ID = 42
			return nil
		},
	}
	feed := &feedPublisherStub{}
	svc := NewPostService(repo, feed, nil)

	post, err := svc.Create(context.Background(), "Alice", "  hello world  ")
	require.NoError(t, err)

	assert.Equal(t, uint(42), post.ID)
	assert.Equal(t, "alice", post.Author)
	assert.Equal(t, "hello world", post.Content)

	require.Len(t, feed.published, 1)
	assert.Same(t, post, feed.published[0])
}

func TestPostService_CreateValidation(t *testing.T) {
	svc := NewPostService(&postRepoStub{}, nil, nil)
	ctx := context.Background()

	for name, content := range map[string]string{
		"empty":    "",
		"blank":    "   \n\t",
		"too long": strings.Repeat("a", maxPostLength+1),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, "alice", content)
			require.Error(t, err)

			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
}

func TestPostService_CreateFailureDoesNotPublish(t *testing.T) {
	repo := &postRepoStub{
		createFn: func(context.Context, *models.Post) error {
			return models.NewInternalError(assert.AnError)
		},
	}
	feed := &feedPublisherStub{}
	svc := NewPostService(repo, feed, nil)

	_, err := svc.Create(context.Background(), "alice", "hello")
	require.Error(t, err)
	assert.Empty(t, feed.published)
}

func TestPostService_ListFoldsViewer(t *testing.T) {
	var gotViewer string
	repo := &postRepoStub{
		listFn: func(_ context.Context, viewer string, limit, offset int, after *time.Time) ([]models.Post, error) {
			gotViewer = viewer
			return []models.Post{}, nil
		},
	}
	svc := NewPostService(repo, nil, nil)

	_, err := svc.List(context.Background(), "ALICE", 20, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", gotViewer)
}
