package admincontext

import (
	"github.com/dtnhan205/showbillBE/app/models"
	"github.com/gofiber/fiber/v2"
)

// Locals keys written by the identity middleware and read by the guards.
const (
	KeyAdminID    = "ADMIN_ID"
	KeyAdminRole  = "ADMIN_ROLE"
	KeyIsLoggedIn = "ADMIN_LOGGED_IN"
)

// AdminContext is the authenticated identity attached to a request by the
// auth layer in front of the core.
type AdminContext struct {
	AdminID    uint
	Role       string
	IsLoggedIn bool
}

// IsSuper reports whether the request comes from a super admin.
func (a AdminContext) IsSuper() bool {
	return a.Role == models.ROLE_SUPER
}

// Set stores the authenticated identity on the request.
func Set(c *fiber.Ctx, adminID uint, role string) {
	c.Locals(KeyAdminID, adminID)
	c.Locals(KeyAdminRole, role)
	c.Locals(KeyIsLoggedIn, true)
}

// Get reads the authenticated identity from the request.
func Get(c *fiber.Ctx) AdminContext {
	ctx := AdminContext{}
	if id, ok := c.Locals(KeyAdminID).(uint); ok {
		ctx.AdminID = id
	}
	if role, ok := c.Locals(KeyAdminRole).(string); ok {
		ctx.Role = role
	}
	if loggedIn, ok := c.Locals(KeyIsLoggedIn).(bool); ok {
		ctx.IsLoggedIn = loggedIn
	}
	return ctx
}
