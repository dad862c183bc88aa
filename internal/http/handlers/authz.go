package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"libris/internal/domain"
	applog "libris/internal/log"
	"libris/internal/services"
)

const principalKey = "principal"

// RequireAuth validates the bearer token and stores the caller's principal.
func RequireAuth(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		h := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(h, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			applog.Security(c, "auth.token.missing", nil)
			return failMsg(c, fiber.StatusUnauthorized, "missing bearer token", nil)
		}
		p, err := auth.Authenticate(strings.TrimSpace(token))
		if err != nil {
			applog.Security(c, "auth.token.invalid", nil)
			return failMsg(c, fiber.StatusUnauthorized, "invalid or expired token", nil)
		}
		c.Locals(principalKey, p)
		return c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principal(c)
		if !ok || !p.IsAdmin() {
			applog.Security(c, "access.denied.admin", nil)
			return failMsg(c, fiber.StatusForbidden, "admin access required", nil)
		}
		return c.Next()
	}
}

func principal(c *fiber.Ctx) (domain.Principal, bool) {
	p, ok := c.Locals(principalKey).(domain.Principal)
	return p, ok && p.UserID != ""
}
