package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// AdminRequired must run after LoadUser.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return unauthorized(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		}
		if !p.IsAdmin() {
			return unauthorized(c, fiber.StatusForbidden, "FORBIDDEN", "Admin access required")
		}
		return c.Next()
	}
}
