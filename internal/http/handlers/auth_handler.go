package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"libris/internal/domain"
	"libris/internal/log"
	"libris/internal/services"
	"libris/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in loginPayload
	if bad := parseBody(c, &in); bad != nil {
		return bad.send(c)
	}
	email, okEmail := validate.Email(in.Email)
	if !okEmail || !validate.Password(in.Password) {
		log.Security(c, "auth.login.fail", map[string]any{"email": in.Email, "reason": "bad_format"})
		return failMsg(c, fiber.StatusUnauthorized, domain.ErrBadCreds.Error(), nil)
	}
	sess, err := h.Auth.Login(c.UserContext(), email, in.Password)
	if err != nil {
		if errors.Is(err, domain.ErrBadCreds) {
			log.Security(c, "auth.login.fail", map[string]any{"email": email})
		}
		return fail(c, "auth.login", err)
	}
	log.Audit(c, "auth.login.success", map[string]any{"email": email, "user_id": sess.User.ID})
	return ok(c, fiber.StatusOK, "login successful", sess)
}

// GET /api/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	p, _ := principal(c)
	u, err := h.Auth.CurrentUser(c.UserContext(), p)
	if err != nil {
		return fail(c, "auth.me", err)
	}
	return ok(c, fiber.StatusOK, "current user", u)
}
