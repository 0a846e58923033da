package middleware

import (
	"strconv"
	"strings"

	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/dtnhan205/showbillBE/internal/pkg/admincontext"
	"github.com/gofiber/fiber/v2"
)

// IdentityFromHeaders installs the identity forwarded by the authentication
// layer in front of the service (X-Admin-Id / X-Admin-Role). The core trusts
// this identity per the deployment's trust boundary; requests without it
// simply stay anonymous and fail the guards below.
func IdentityFromHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rawID := strings.TrimSpace(c.Get("X-Admin-Id"))
		if rawID != "" {
			if id, err := strconv.ParseUint(rawID, 10, 64); err == nil && id > 0 {
				role := strings.TrimSpace(c.Get("X-Admin-Role"))
				if role != models.ROLE_SUPER {
					role = models.ROLE_ADMIN
				}
				admincontext.Set(c, uint(id), role)
			}
		}
		return c.Next()
	}
}

// RequireAdmin ensures an authenticated admin and returns JSON 401 otherwise.
func RequireAdmin(c *fiber.Ctx) error {
	if !admincontext.Get(c).IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}

// RequireSuperAdmin ensures the authenticated admin holds the super role.
func RequireSuperAdmin(c *fiber.Ctx) error {
	ctx := admincontext.Get(c)
	if !ctx.IsLoggedIn {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	if !ctx.IsSuper() {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "only super admins may access this",
		})
	}
	return c.Next()
}
