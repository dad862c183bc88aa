package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"libris/internal/domain"
	applog "libris/internal/log"
	"libris/internal/services"
	"libris/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

type productPayload struct {
	Name     string          `json:"name" validate:"required,max=200"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image" validate:"max=500"`
}

func parseProduct(c *fiber.Ctx) (domain.Product, *inputError) {
	var in productPayload
	if bad := parseBody(c, &in); bad != nil {
		return domain.Product{}, bad
	}
	if in.Price.IsNegative() {
		return domain.Product{}, &inputError{msg: "validation error", fields: map[string]string{"price": "gte 0"}}
	}
	return domain.Product{Name: in.Name, Quantity: in.Quantity, Price: in.Price, Image: in.Image}, nil
}

// GET /api/products?q=
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q, valid := validate.Q(c.Query("q"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid search query", nil)
	}
	prods, err := h.Catalog.ListProducts(c.UserContext(), q)
	if err != nil {
		return fail(c, "products.list", err)
	}
	return ok(c, fiber.StatusOK, "products", prods)
}

// GET /api/products/:id
func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid product id", nil)
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, "products.get", err)
	}
	return ok(c, fiber.StatusOK, "product", p)
}

// POST /api/products (admin)
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	prod, bad := parseProduct(c)
	if bad != nil {
		return bad.send(c)
	}
	who, _ := principal(c)
	prod, err := h.Catalog.CreateProduct(c.UserContext(), who, prod)
	if err != nil {
		return fail(c, "products.create", err)
	}
	applog.Audit(c, "products.create", map[string]any{"product_id": prod.ID})
	return ok(c, fiber.StatusCreated, "product created", prod)
}

// PUT /api/products/:id (admin)
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid product id", nil)
	}
	prod, bad := parseProduct(c)
	if bad != nil {
		return bad.send(c)
	}
	prod.ID = id
	prod, err := h.Catalog.UpdateProduct(c.UserContext(), prod)
	if err != nil {
		return fail(c, "products.update", err)
	}
	applog.Audit(c, "products.update", map[string]any{"product_id": id})
	return ok(c, fiber.StatusOK, "product updated", prod)
}

// DELETE /api/products/:id (admin)
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	id, valid := validate.ID(c.Params("id"))
	if !valid {
		return failMsg(c, fiber.StatusBadRequest, "invalid product id", nil)
	}
	if err := h.Catalog.DeleteProduct(c.UserContext(), id); err != nil {
		return fail(c, "products.delete", err)
	}
	applog.Audit(c, "products.delete", map[string]any{"product_id": id})
	return ok(c, fiber.StatusOK, "product deleted", nil)
}
