package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/md2004sameer/Wire/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userApp(s *Server, username string) *fiber.App {
	app := authedApp(username)
	users := app.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me", s.UpdateMyProfile)
	users.Get("/", s.GetAllUsers)
	users.Get("/:username", s.GetUserProfile)
	return app
}

func TestUpdateMyProfile(t *testing.T) {
	s := newHandlerServer(t)
	registerUser(t, s, "alice", false)

	app := userApp(s, "alice")

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/users/me", nil))
	require.NoError(t, err)
	var me models.User
	decodeBody(t, resp, &me)
	assert.Equal(t, "alice", me.Username)
	assert.False(t, me.IsPrivate)

	// Only the supplied fields change.
	req := httptest.NewRequest(http.MethodPut, "/users/me",
		strings.NewReader(`{"bio":"hello there"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	var updated models.User
	decodeBody(t, resp, &updated)
	assert.Equal(t, "hello there", updated.Bio)
	assert.False(t, updated.IsPrivate)
}

func TestGetUserProfileEmbedsRelationship(t *testing.T) {
	s := newHandlerServer(t)
	registerUser(t, s, "alice", false)
	registerUser(t, s, "bob", false)

	rel := relationshipApp(s, "alice")
	resp, err := rel.Test(httptest.NewRequest(http.MethodPost, "/relationships/bob/follow", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	app := userApp(s, "alice")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/users/Bob", nil))
	require.NoError(t, err)
	var profile struct {
		User               models.User `json:"user"`
		RelationshipStatus string      `json:"relationship_status"`
	}
	decodeBody(t, resp, &profile)
	assert.Equal(t, "bob", profile.User.Username)
	assert.Equal(t, "following", profile.RelationshipStatus)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/users/ghost", nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
