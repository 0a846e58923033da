package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/dtnhan205/showbillBE/internal/pkg/admincontext"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(IdentityFromHeaders())
	app.Get("/admin", RequireAdmin, func(c *fiber.Ctx) error {
		ctx := admincontext.Get(c)
		return c.JSON(fiber.Map{"admin_id": ctx.AdminID, "role": ctx.Role})
	})
	app.Get("/super", RequireAdmin, RequireSuperAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireAdmin_RejectsAnonymous(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/admin", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdmin_AcceptsForwardedIdentity(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("X-Admin-Id", "42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAdmin_IgnoresBadAdminID(t *testing.T) {
	app := newTestApp()

	for _, id := range []string{"0", "-1", "abc", ""} {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("X-Admin-Id", id)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "id %q should stay anonymous", id)
	}
}

func TestRequireSuperAdmin_RejectsRegularAdmin(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/super", nil)
	req.Header.Set("X-Admin-Id", "42")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireSuperAdmin_AcceptsSuperRole(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/super", nil)
	req.Header.Set("X-Admin-Id", "42")
	req.Header.Set("X-Admin-Role", "super")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireSuperAdmin_UnknownRoleDowngradesToAdmin(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest("GET", "/super", nil)
	req.Header.Set("X-Admin-Id", "42")
	req.Header.Set("X-Admin-Role", "root")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
