package server

import (
	"time"

	"github.com/md2004sameer/Wire/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.Create(c.Context(), currentUsername(c), req.Content)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPosts handles GET /api/posts. Anonymous viewers get liked=false
// on every post; an optional ?after=RFC3339 restricts to newer posts.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	p := parsePagination(c, 20)

	var after *time.Time
	if raw := c.Query("after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid after timestamp"))
		}
		after = &t
	}

	posts, err := s.postService.List(c.Context(), currentUsername(c), p.Limit, p.Offset, after)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.Get(c.Context(), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(post)
}

// ToggleLike handles POST /api/posts/:id/like
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	liked, err := s.interactionService.ToggleLike(c.Context(), currentUsername(c), id)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// SharePost handles POST /api/posts/:id/share
func (s *Server) SharePost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.interactionService.Share(c.Context(), id); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post shared"})
}
