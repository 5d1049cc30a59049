package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Jgaps7/curriculos-saas/internal/auth"
)

const (
	principalKey = "principal"
	TenantHeader = "X-Tenant-Id"
)

// RequireTenant verifies the token and tenant membership.
func RequireTenant(gate auth.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := gate.Authorize(c.UserContext(), c.Get(fiber.HeaderAuthorization), c.Get(TenantHeader))
		if err != nil {
			return err
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// RequireToken verifies the token only; used before a tenant exists.
func RequireToken(gate auth.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := gate.AuthenticateToken(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// Principal returns the caller set by RequireTenant or RequireToken.
func Principal(c *fiber.Ctx) *auth.Principal {
	p, _ := c.Locals(principalKey).(*auth.Principal)
	return p
}
