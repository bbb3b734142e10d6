package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "stash/internal/log"
	"stash/internal/services"
)

// RequireUser resolves the sid cookie to a user id and stashes it in
// Locals; requests without a resolved identity get the 401 envelope.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies("sid")
		if sid == "" {
			return fail(c, fiber.StatusUnauthorized, "unauthorized")
		}
		u, err := auth.CurrentUser(sid)
		if err != nil || u == nil {
			applog.Security(c, "access.denied", map[string]any{"sid": sid})
			return fail(c, fiber.StatusUnauthorized, "unauthorized")
		}
		c.Locals("user", u)
		c.Locals("userID", u.ID)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
