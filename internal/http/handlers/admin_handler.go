package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "libris/internal/log"
	"libris/internal/services"
)

type AdminHandler struct {
	Inv *services.InventoryService
}

// GET /api/admin/inventory
func (h *AdminHandler) Inventory(c *fiber.Ctx) error {
	rows, err := h.Inv.Overview(c.UserContext())
	if err != nil {
		applog.Error(c, "admin.inventory.list.fail", err, nil)
		return failMsg(c, fiber.StatusInternalServerError, "Could not load inventory", nil)
	}
	applog.Audit(c, "admin.inventory.view", map[string]any{"rows": len(rows)})
	return ok(c, fiber.StatusOK, "inventory", rows)
}
