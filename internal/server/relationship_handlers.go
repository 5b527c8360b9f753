package server

import (
	"github.com/md2004sameer/Wire/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Follow handles POST /api/relationships/:username/follow
func (s *Server) Follow(c *fiber.Ctx) error {
	edge, err := s.relationshipService.Follow(c.Context(), currentUsername(c), c.Params("username"))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": edge.Status,
	})
}

// Unfollow handles DELETE /api/relationships/:username/follow
func (s *Server) Unfollow(c *fiber.Ctx) error {
	if err := s.relationshipService.Unfollow(c.Context(), currentUsername(c), c.Params("username")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Unfollowed"})
}

// AcceptFollowRequest handles POST /api/relationships/:username/accept
func (s *Server) AcceptFollowRequest(c *fiber.Ctx) error {
	if err := s.relationshipService.Accept(c.Context(), currentUsername(c), c.Params("username")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Follow request accepted"})
}

// RejectFollowRequest handles POST /api/relationships/:username/reject
func (s *Server) RejectFollowRequest(c *fiber.Ctx) error {
	if err := s.relationshipService.Reject(c.Context(), currentUsername(c), c.Params("username")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Follow request rejected"})
}

// CancelFollowRequest handles DELETE /api/relationships/:username/request
func (s *Server) CancelFollowRequest(c *fiber.Ctx) error {
	if err := s.relationshipService.CancelRequest(c.Context(), currentUsername(c), c.Params("username")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Follow request cancelled"})
}

// RemoveFollower handles DELETE /api/relationships/:username/follower
func (s *Server) RemoveFollower(c *fiber.Ctx) error {
	if err := s.relationshipService.RemoveFollower(c.Context(), currentUsername(c), c.Params("username")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Follower removed"})
}

// BlockUser handles POST /api/relationships/:username/block
func (s *Server) BlockUser(c *fiber.Ctx) error {
	if err := s.relationshipService.Block(c.Context(), currentUsername(c), c.Params("username")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User blocked"})
}

// UnblockUser handles DELETE /api/relationships/:username/block
func (s *Server) UnblockUser(c *fiber.Ctx) error {
	if err := s.relationshipService.Unblock(c.Context(), currentUsername(c), c.Params("username")); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User unblocked"})
}

// GetRelationshipStatus handles GET /api/relationships/status/:username
func (s *Server) GetRelationshipStatus(c *fiber.Ctx) error {
	label, err := s.relationshipService.Status(c.Context(), currentUsername(c), c.Params("username"))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"status": label})
}

// BatchRelationshipStatus handles POST /api/relationships/status/batch
func (s *Server) BatchRelationshipStatus(c *fiber.Ctx) error {
	var req struct {
		Usernames []string `json:"usernames"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if len(req.Usernames) == 0 {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("usernames is required"))
	}
	if len(req.Usernames) > maxPaginationLimit {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Too many usernames in one request"))
	}

	labels, err := s.relationshipService.BatchStatus(c.Context(), currentUsername(c), req.Usernames)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"statuses": labels})
}

// GetFollowing handles GET /api/relationships/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	names, err := s.relationshipService.Following(c.Context(), currentUsername(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"following": names})
}

// GetFollowers handles GET /api/relationships/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	names, err := s.relationshipService.Followers(c.Context(), currentUsername(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"followers": names})
}

// GetFollowRequests handles GET /api/relationships/requests
func (s *Server) GetFollowRequests(c *fiber.Ctx) error {
	names, err := s.relationshipService.Requests(c.Context(), currentUsername(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"requests": names})
}

// GetBlockedUsers handles GET /api/relationships/blocked
func (s *Server) GetBlockedUsers(c *fiber.Ctx) error {
	names, err := s.relationshipService.Blocked(c.Context(), currentUsername(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"blocked": names})
}
