package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeatureFlags handles GET /api/feature-flags: the configured flags
// plus their evaluation for the calling user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	username := currentUsername(c)

	raw := s.featureFlags.Raw()
	evaluated := make(map[string]bool, len(raw))
	for name := range raw {
		evaluated[name] = s.featureFlags.Enabled(name, username)
	}

	return c.JSON(fiber.Map{
		"flags":     raw,
		"evaluated": evaluated,
	})
}
