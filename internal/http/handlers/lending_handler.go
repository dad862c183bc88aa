package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "libris/internal/log"
	"libris/internal/services"
	"libris/internal/validate"
)

type LendingHandler struct {
	Lending *services.LendingService
	History *services.HistoryService
}

// POST /api/borrow/:bookId
func (h *LendingHandler) Borrow(c *fiber.Ctx) error {
	p, _ := principal(c)
	bookID, valid := validate.ID(c.Params("bookId"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid book id", nil)
	}
	loan, err := h.Lending.Borrow(c.UserContext(), p, bookID)
	if err != nil {
		applog.Info(c, "lending.borrow.rejected", map[string]any{"book_id": bookID, "reason": err.Error()})
		return fail(c, "lending.borrow", err)
	}
	applog.Audit(c, "lending.borrow", map[string]any{"book_id": bookID, "loan_id": loan.ID})
	return ok(c, fiber.StatusCreated, "book borrowed successfully", loan)
}

// POST /api/borrow/return/:bookId
func (h *LendingHandler) Return(c *fiber.Ctx) error {
	p, _ := principal(c)
	bookID, valid := validate.ID(c.Params("bookId"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid book id", nil)
	}
	loan, err := h.Lending.Return(c.UserContext(), p, bookID)
	if err != nil {
		applog.Info(c, "lending.return.rejected", map[string]any{"book_id": bookID, "reason": err.Error()})
		return fail(c, "lending.return", err)
	}
	applog.Audit(c, "lending.return", map[string]any{"book_id": bookID, "loan_id": loan.ID})
	return ok(c, fiber.StatusOK, "book returned successfully", loan)
}

// GET /api/borrow/history?page=&limit=
func (h *LendingHandler) HistoryPage(c *fiber.Ctx) error {
	p, _ := principal(c)
	page, okPage := validate.PageParam(c.Query("page"))
	limit, okLimit := validate.PageParam(c.Query("limit"))
	if !okPage || !okLimit {
		return failMsg(c, fiber.StatusBadRequest, services.ErrBadPaging.Error(), nil)
	}
	res, err := h.History.History(c.UserContext(), p, page, limit)
	if err != nil {
		return fail(c, "lending.history", err)
	}
	return ok(c, fiber.StatusOK, "borrow history", res)
}

// GET /api/borrow/status/:bookId
func (h *LendingHandler) Status(c *fiber.Ctx) error {
	p, _ := principal(c)
	bookID, valid := validate.ID(c.Params("bookId"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid book id", nil)
	}
	st, err := h.Lending.Status(c.UserContext(), p, bookID)
	if err != nil {
		return fail(c, "lending.status", err)
	}
	return ok(c, fiber.StatusOK, "borrow status", st)
}
