package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"libris/internal/log"
	"libris/internal/services"
	"libris/internal/validate"
)

type SearchHandler struct {
	Catalog *services.CatalogService
}

// GET /api/search?q=&category=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	rawQ := c.Query("q")
	q, valid := validate.Q(rawQ)
	if !valid {
		log.Security(c, "validation.fail", map[string]any{"field": "q"})
		return failMsg(c, fiber.StatusBadRequest, "enter a valid keyword (letters/numbers only)", nil)
	}
	if q == "" {
		return ok(c, fiber.StatusOK, "search results", fiber.Map{"q": "", "books": []any{}, "count": 0})
	}
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		if _, valid := validate.ID(category); !valid {
			log.Security(c, "validation.fail", map[string]any{"field": "category"})
			return failMsg(c, fiber.StatusBadRequest, "invalid category", nil)
		}
	}

	books, err := h.Catalog.SearchBooks(c.UserContext(), q, category)
	if err != nil {
		return fail(c, "search.error", err)
	}
	return ok(c, fiber.StatusOK, "search results", fiber.Map{
		"q": q, "category": category, "books": books, "count": len(books),
	})
}
