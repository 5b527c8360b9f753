package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetNotifications handles GET /api/notifications
func (s *Server) GetNotifications(c *fiber.Ctx) error {
	p := parsePagination(c, 50)
	notifications, err := s.notificationService.List(c.Context(), currentUsername(c), p.Limit, p.Offset)
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(notifications)
}

// GetUnseenCount handles GET /api/notifications/unseen-count
func (s *Server) GetUnseenCount(c *fiber.Ctx) error {
	count, err := s.notificationService.CountUnseen(c.Context(), currentUsername(c))
	if err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"count": count})
}

// MarkNotificationSeen handles POST /api/notifications/:id/seen
func (s *Server) MarkNotificationSeen(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.notificationService.MarkSeen(c.Context(), currentUsername(c), id); err != nil {
		return respondAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Notification marked as seen"})
}
