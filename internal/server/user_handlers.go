package server

import (
	"github.com/md2004sameer/Wire/internal/models"
	"github.com/md2004sameer/Wire/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.Get(c.Context(), currentUsername(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Bio       *string `json:"bio"`
		IsPrivate *bool   `json:"is_private"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userService.UpdateProfile(c.Context(), currentUsername(c), service.UpdateProfileInput{
		Bio:       req.Bio,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(user)
}

// GetAllUsers handles GET /api/users
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	users, err := s.userService.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(users)
}

// GetUserProfile handles GET /api/users/:username. The response embeds
// the viewer-relative relationship label so a profile page renders the
// right follow button in one request.
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	target := c.Params("username")

	user, err := s.userService.Get(c.Context(), target)
	if err != nil {
		return respondAppError(c, err)
	}

	label, err := s.relationshipService.Status(c.Context(), currentUsername(c), user.Username)
	if err != nil {
		return respondAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":                user,
		"relationship_status": label,
	})
}
