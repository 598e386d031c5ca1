package handler

import (
	"go-warehouse-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

type thresholdRequest struct {
	MinQuantity int `json:"min_quantity"`
	MaxQuantity int `json:"max_quantity"`
}

// GetInventory lists ledger rows
// GET /api/v1/inventory?low_stock=true
func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	items, err := h.service.List(c.UserContext(), c.QueryBool("low_stock"))
	if err != nil {
		return err
	}
	return c.JSON(items)
}

// GetProductInventory returns the ledger row of one product
// GET /api/v1/inventory/:id
func (h *InventoryHandler) GetProductInventory(c *fiber.Ctx) error {
	productID, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	inv, err := h.service.Get(c.UserContext(), productID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(inv)
}

// UpdateThresholds sets the low and high stock marks
// PUT /api/v1/inventory/:id/thresholds
func (h *InventoryHandler) UpdateThresholds(c *fiber.Ctx) error {
	productID, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}

	var req thresholdRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	inv, err := h.service.UpdateThresholds(c.UserContext(), productID, req.MinQuantity, req.MaxQuantity, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Thresholds updated", "data": inv})
}
