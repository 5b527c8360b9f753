package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/md2004sameer/Wire/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerUser(t *testing.T, s *Server, username string, private bool) {
	t.Helper()
	_, err := s.userService.Register(context.Background(), username, username+"@example.com", "password123")
	require.NoError(t, err)
	if private {
		_, err = s.userService.UpdateProfile(context.Background(), username,
			service.UpdateProfileInput{IsPrivate: &private})
		require.NoError(t, err)
	}
}

func relationshipApp(s *Server, username string) *fiber.App {
	app := authedApp(username)
	rel := app.Group("/relationships")
	rel.Get("/following", s.GetFollowing)
	rel.Get("/followers", s.GetFollowers)
	rel.Get("/requests", s.GetFollowRequests)
	rel.Get("/blocked", s.GetBlockedUsers)
	rel.Post("/status/batch", s.BatchRelationshipStatus)
	rel.Get("/status/:username", s.GetRelationshipStatus)
	rel.Post("/:username/follow", s.Follow)
	rel.Delete("/:username/follow", s.Unfollow)
	rel.Post("/:username/accept", s.AcceptFollowRequest)
	rel.Post("/:username/reject", s.RejectFollowRequest)
	rel.Delete("/:username/request", s.CancelFollowRequest)
	rel.Delete("/:username/follower", s.RemoveFollower)
	rel.Post("/:username/block", s.BlockUser)
	rel.Delete("/:username/block", s.UnblockUser)
	return app
}

func TestFollowPublicUser(t *testing.T) {
	s := newHandlerServer(t)
	registerUser(t, s, "alice", false)
	registerUser(t, s, "bob", false)

	app := relationshipApp(s, "alice")

	req := httptest.NewRequest(http.MethodPost, "/relationships/bob/follow", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &created)
	assert.Equal(t, "accepted", created.Status)

	// A duplicate follow conflicts.
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/relationships/bob/follow", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/relationships/status/bob", nil))
	require.NoError(t, err)
	var status struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &status)
	assert.Equal(t, "following", status.Status)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/relationships/following", nil))
	require.NoError(t, err)
	var following struct {
		Following []string `json:"following"`
	}
	decodeBody(t, resp, &following)
	assert.Equal(t, []string{"bob"}, following.Following)

	// Unfollow removes the edge.
	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/relationships/bob/follow", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/relationships/status/bob", nil))
	require.NoError(t, err)
	decodeBody(t, resp, &status)
	assert.Equal(t, "none", status.Status)
}

func TestFollowPrivateUserRequiresApproval(t *testing.T) {
	s := newHandlerServer(t)
	registerUser(t, s, "alice", false)
	registerUser(t, s, "bob", true)

	aliceApp := relationshipApp(s, "alice")
	bobApp := relationshipApp(s, "bob")

	resp, err := aliceApp.Test(httptest.NewRequest(http.MethodPost, "/relationships/bob/follow", nil))
	require.NoError(t, err)
	var created struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &created)
	assert.Equal(t, "pending", created.Status)

	// Bob sees the request and accepts it.
	resp, err = bobApp.Test(httptest.NewRequest(http.MethodGet, "/relationships/requests", nil))
	require.NoError(t, err)
	var requests struct {
		Requests []string `json:"requests"`
	}
	decodeBody(t, resp, &requests)
	assert.Equal(t, []string{"alice"}, requests.Requests)

	resp, err = bobApp.Test(httptest.NewRequest(http.MethodPost, "/relationships/alice/accept", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Accepting the same request twice finds nothing pending.
	resp, err = bobApp.Test(httptest.NewRequest(http.MethodPost, "/relationships/alice/accept", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = aliceApp.Test(httptest.NewRequest(http.MethodGet, "/relationships/status/bob", nil))
	require.NoError(t, err)
	var status struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &status)
	assert.Equal(t, "following", status.Status)
}

func TestBlockSeversAndSuppresses(t *testing.T) {
	s := newHandlerServer(t)
	registerUser(t, s, "alice", false)
	registerUser(t, s, "bob", false)

	aliceApp := relationshipApp(s, "alice")
	bobApp := relationshipApp(s, "bob")

	resp, err := bobApp.Test(httptest.NewRequest(http.MethodPost, "/relationships/alice/follow", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = aliceApp.Test(httptest.NewRequest(http.MethodPost, "/relationships/bob/block", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The block replaced bob's follow edge; he can no longer re-follow.
	resp, err = bobApp.Test(httptest.NewRequest(http.MethodPost, "/relationships/alice/follow", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = aliceApp.Test(httptest.NewRequest(http.MethodGet, "/relationships/blocked", nil))
	require.NoError(t, err)
	var blocked struct {
		Blocked []string `json:"blocked"`
	}
	decodeBody(t, resp, &blocked)
	assert.Equal(t, []string{"bob"}, blocked.Blocked)

	// Unblock clears the way again.
	resp, err = aliceApp.Test(httptest.NewRequest(http.MethodDelete, "/relationships/bob/block", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = bobApp.Test(httptest.NewRequest(http.MethodPost, "/relationships/alice/follow", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestFollowSelfAndUnknownTarget(t *testing.T) {
	s := newHandlerServer(t)
	registerUser(t, s, "alice", false)

	app := relationshipApp(s, "alice")

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/relationships/alice/follow", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/relationships/ghost/follow", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBatchRelationshipStatus(t *testing.T) {
	s := newHandlerServer(t)
	registerUser(t, s, "alice", false)
	registerUser(t, s, "bob", false)
	registerUser(t, s, "carol", true)

	app := relationshipApp(s, "alice")

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/relationships/bob/follow", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/relationships/carol/follow", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = app.Test(postJSON(t, "/relationships/status/batch", map[string]any{
		"usernames": []string{"bob", "carol", "alice", "ghost"},
	}))
	require.NoError(t, err)
	var got struct {
		Statuses map[string]string `json:"statuses"`
	}
	decodeBody(t, resp, &got)
	assert.Equal(t, map[string]string{
		"bob":   "following",
		"carol": "pending",
		"alice": "self",
		"ghost": "none",
	}, got.Statuses)

	// An empty list is a validation error, not an empty map.
	resp, err = app.Test(postJSON(t, "/relationships/status/batch", map[string]any{
		"usernames": []string{},
	}))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
