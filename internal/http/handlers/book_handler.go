package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"libris/internal/domain"
	applog "libris/internal/log"
	"libris/internal/services"
	"libris/internal/validate"
)

type BookHandler struct {
	Catalog *services.CatalogService
	Inv     *services.InventoryService
}

type bookPayload struct {
	Title         string          `json:"title" validate:"required,max=200"`
	Author        string          `json:"author" validate:"required,max=200"`
	Description   string          `json:"description" validate:"max=4000"`
	Price         decimal.Decimal `json:"price"`
	PublishedYear int             `json:"publishedYear" validate:"gte=0,lte=9999"`
	ISBN          string          `json:"isbn" validate:"required,min=10,max=17"`
	Stock         *int            `json:"stock" validate:"omitempty,gte=0"`
	Image         string          `json:"image" validate:"max=500"`
	Categories    []string        `json:"categories" validate:"omitempty,dive,required,max=64"`
}

func (in bookPayload) book() domain.Book {
	b := domain.Book{
		Title:         in.Title,
		Author:        in.Author,
		Description:   in.Description,
		Price:         in.Price,
		PublishedYear: in.PublishedYear,
		ISBN:          in.ISBN,
		Image:         in.Image,
		CategoryIDs:   in.Categories,
	}
	if in.Stock != nil {
		b.Stock = *in.Stock
	}
	return b
}

// inputError is a rejected payload, answered with 400.
type inputError struct {
	msg    string
	fields any
}

func (e *inputError) send(c *fiber.Ctx) error {
	return failMsg(c, fiber.StatusBadRequest, e.msg, e.fields)
}

func parseBody(c *fiber.Ctx, in any) *inputError {
	if err := c.BodyParser(in); err != nil {
		return &inputError{msg: "invalid json"}
	}
	if err := validate.Struct(in); err != nil {
		return &inputError{msg: "validation error", fields: validate.Fields(err)}
	}
	return nil
}

func parseBook(c *fiber.Ctx) (bookPayload, *inputError) {
	var in bookPayload
	if bad := parseBody(c, &in); bad != nil {
		return in, bad
	}
	if in.Price.IsNegative() {
		return in, &inputError{msg: "validation error", fields: map[string]string{"price": "gte 0"}}
	}
	return in, nil
}

// GET /api/books?category=
func (h *BookHandler) List(c *fiber.Ctx) error {
	cat := c.Query("category")
	if cat != "" {
		var valid bool
		if cat, valid = validate.ID(cat); !valid {
			return failMsg(c, fiber.StatusBadRequest, "invalid category id", nil)
		}
	}
	books, err := h.Catalog.ListBooks(c.UserContext(), cat)
	if err != nil {
		return fail(c, "books.list", err)
	}
	return ok(c, fiber.StatusOK, "books", books)
}

// GET /api/books/:id
func (h *BookHandler) Get(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid book id", nil)
	}
	b, err := h.Catalog.GetBook(c.UserContext(), id)
	if err != nil {
		return fail(c, "books.get", err)
	}
	return ok(c, fiber.StatusOK, "book", b)
}

// GET /api/books/:id/availability
func (h *BookHandler) Availability(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid book id", nil)
	}
	a, err := h.Inv.CheckAvailability(c.UserContext(), id)
	if err != nil {
		return fail(c, "books.availability", err)
	}
	return ok(c, fiber.StatusOK, "availability", a)
}

// POST /api/books (admin). stock sets the initial inventory.
func (h *BookHandler) Create(c *fiber.Ctx) error {
	in, bad := parseBook(c)
	if bad != nil {
		return bad.send(c)
	}
	p, _ := principal(c)
	b, err := h.Catalog.CreateBook(c.UserContext(), p, in.book())
	if err != nil {
		return fail(c, "books.create", err)
	}
	applog.Audit(c, "books.create", map[string]any{"book_id": b.ID, "stock": b.Stock})
	return ok(c, fiber.StatusCreated, "book created", b)
}

// PUT /api/books/:id (admin). Stock is not editable here.
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid book id", nil)
	}
	in, bad := parseBook(c)
	if bad != nil {
		return bad.send(c)
	}
	if in.Stock != nil {
		return failMsg(c, fiber.StatusBadRequest, "stock changes only through borrow and return", nil)
	}
	b := in.book()
	b.ID = id
	b, err := h.Catalog.UpdateBook(c.UserContext(), b)
	if err != nil {
		return fail(c, "books.update", err)
	}
	applog.Audit(c, "books.update", map[string]any{"book_id": id})
	return ok(c, fiber.StatusOK, "book updated", b)
}

// DELETE /api/books/:id (admin)
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid book id", nil)
	}
	if err := h.Catalog.DeleteBook(c.UserContext(), id); err != nil {
		return fail(c, "books.delete", err)
	}
	applog.Audit(c, "books.delete", map[string]any{"book_id": id})
	return ok(c, fiber.StatusOK, "book deleted", nil)
}
