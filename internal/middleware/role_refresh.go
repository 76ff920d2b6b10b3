package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/vidyadoc/slc-api/internal/utils"
)

// RoleResolver reports the current role for an authenticated user.
type RoleResolver func(ctx context.Context, userID uint) (string, error)

// RefreshRole overwrites the token role with the role currently stored for
// the user, so a demotion or a disabled account takes effect on the next
// request rather than at token expiry.
func RefreshRole(resolve RoleResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("user_id").(uint)
		if !ok || userID == 0 {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		role, err := resolve(c.Context(), userID)
		if err != nil {
			return utils.SendError(c, fiber.StatusForbidden, "account unavailable")
		}

		c.Locals("user_role", role)
		return c.Next()
	}
}
