package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"libris/internal/domain"
	applog "libris/internal/log"
	"libris/internal/services"
)

// Envelope is the shape of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	msgInternal    = "Something went wrong. Please try again."
	msgUnavailable = "Service temporarily unavailable, please retry."
)

func ok(c *fiber.Ctx, status int, msg string, data any) error {
	return c.Status(status).JSON(Envelope{Success: true, Message: msg, Data: data})
}

func failMsg(c *fiber.Ctx, status int, msg string, data any) error {
	return c.Status(status).JSON(Envelope{Success: false, Message: msg, Data: data})
}

// fail maps err to a status and writes the envelope. Unknown errors are
// logged and answered with a generic message.
func fail(c *fiber.Ctx, action string, err error) error {
	status, msg := statusFor(err)
	switch {
	case errors.Is(err, context.Canceled):
		applog.Info(c, action+".canceled", nil)
	case status >= fiber.StatusInternalServerError:
		applog.Error(c, action+".fail", err, nil)
	case status == fiber.StatusUnauthorized || status == fiber.StatusForbidden:
		applog.Security(c, action+".denied", map[string]any{"reason": err.Error()})
	}
	return failMsg(c, status, msg, nil)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrBookNotFound),
		errors.Is(err, domain.ErrLoanNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrProductNotFound):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrAlreadyBorrowed),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrNoActiveLoan),
		errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, services.ErrBadPaging):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDuplicateISBN),
		errors.Is(err, domain.ErrDuplicateCategory),
		errors.Is(err, domain.ErrBookInUse):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrBadCreds),
		errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrTransient),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return fiber.StatusServiceUnavailable, msgUnavailable
	}
	return fiber.StatusInternalServerError, msgInternal
}

// ErrorHandler answers errors that escape handlers (fiber errors, panics
// turned into errors by recover) with the envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			applog.Error(c, "server.error", err, nil)
			return failMsg(c, fe.Code, msgInternal, nil)
		}
		return failMsg(c, fe.Code, fe.Message, nil)
	}
	if errors.Is(err, context.Canceled) {
		applog.Info(c, "server.canceled", nil)
		return failMsg(c, fiber.StatusServiceUnavailable, msgUnavailable, nil)
	}
	applog.Error(c, "server.error", err, nil)
	return failMsg(c, fiber.StatusInternalServerError, msgInternal, nil)
}
