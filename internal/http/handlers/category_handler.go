package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "libris/internal/log"
	"libris/internal/services"
	"libris/internal/validate"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

type categoryPayload struct {
	Name string `json:"name" validate:"required,max=60"`
}

// GET /api/categories
func (h *CategoryHandler) List(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories(c.UserContext())
	if err != nil {
		return fail(c, "categories.list", err)
	}
	return ok(c, fiber.StatusOK, "categories", cats)
}

// POST /api/categories (admin)
func (h *CategoryHandler) Create(c *fiber.Ctx) error {
	var in categoryPayload
	if bad := parseBody(c, &in); bad != nil {
		return bad.send(c)
	}
	name, valid := validate.Name(in.Name)
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "validation error", map[string]string{"name": "required"})
	}
	cat, err := h.Catalog.CreateCategory(c.UserContext(), name)
	if err != nil {
		return fail(c, "categories.create", err)
	}
	applog.Audit(c, "categories.create", map[string]any{"category_id": cat.ID, "slug": cat.Slug})
	return ok(c, fiber.StatusCreated, "category created", cat)
}

// GET /api/categories/:id
func (h *CategoryHandler) Get(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid category id", nil)
	}
	cat, err := h.Catalog.GetCategory(c.UserContext(), id)
	if err != nil {
		return fail(c, "categories.get", err)
	}
	return ok(c, fiber.StatusOK, "category", cat)
}

// PUT /api/categories/:id (admin)
func (h *CategoryHandler) Update(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid category id", nil)
	}
	var in categoryPayload
	if bad := parseBody(c, &in); bad != nil {
		return bad.send(c)
	}
	name, valid := validate.Name(in.Name)
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "validation error", map[string]string{"name": "required"})
	}
	cat, err := h.Catalog.UpdateCategory(c.UserContext(), id, name)
	if err != nil {
		return fail(c, "categories.update", err)
	}
	applog.Audit(c, "categories.update", map[string]any{"category_id": cat.ID, "slug": cat.Slug})
	return ok(c, fiber.StatusOK, "category updated", cat)
}

// DELETE /api/categories/:id (admin)
func (h *CategoryHandler) Delete(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid category id", nil)
	}
	if err := h.Catalog.DeleteCategory(c.UserContext(), id); err != nil {
		return fail(c, "categories.delete", err)
	}
	applog.Audit(c, "categories.delete", map[string]any{"category_id": id})
	return ok(c, fiber.StatusOK, "category deleted", nil)
}
