package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/qolzam/forum/internal/types"
)

// New returns a middleware that only lets callers with the admin system role through.
// It must run after the JWT middleware.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals(types.UserCtxName).(types.UserContext)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"code":    "UNAUTHORIZED",
				"message": "missing user context",
			})
		}
		if !user.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"code":    "FORBIDDEN",
				"message": "admin access required",
			})
		}
		return c.Next()
	}
}
