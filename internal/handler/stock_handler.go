package handler

import (
	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type StockHandler struct {
	service service.StockService
}

func NewStockHandler(s service.StockService) *StockHandler {
	return &StockHandler{service: s}
}

func queryUUID(c *fiber.Ctx, key string) (*uuid.UUID, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// GET /api/v1/stock-ins?product_id=&supplier_id=&status=draft|confirmed|cancelled
func (h *StockHandler) GetStockIns(c *fiber.Ctx) error {
	productID, err := queryUUID(c, "product_id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	supplierID, err := queryUUID(c, "supplier_id")
	if err != nil {
		return badRequest(c, "Invalid supplier ID")
	}
	ins, err := h.service.ListStockIns(c.UserContext(), repository.StockInFilter{
		ProductID:  productID,
		SupplierID: supplierID,
		Status:     model.MovementStatus(c.Query("status")),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(ins)
}

func (h *StockHandler) GetStockIn(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid stock in ID")
	}
	in, err := h.service.GetStockIn(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(in)
}

func (h *StockHandler) CreateStockIn(c *fiber.Ctx) error {
	var req service.CreateStockInRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	in, err := h.service.CreateStockIn(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock in created as draft", "data": in})
}

// POST /api/v1/stock-ins/:id/confirm
func (h *StockHandler) ConfirmStockIn(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid stock in ID")
	}
	in, err := h.service.ConfirmStockIn(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock in confirmed", "data": in})
}

// POST /api/v1/stock-ins/:id/cancel
func (h *StockHandler) CancelStockIn(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid stock in ID")
	}
	in, err := h.service.CancelStockIn(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock in cancelled", "data": in})
}

// GET /api/v1/stock-outs?product_id=&order_id=&type=
func (h *StockHandler) GetStockOuts(c *fiber.Ctx) error {
	productID, err := queryUUID(c, "product_id")
	if err != nil {
		return badRequest(c, "Invalid product ID")
	}
	orderID, err := queryUUID(c, "order_id")
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	outs, err := h.service.ListStockOuts(c.UserContext(), repository.StockOutFilter{
		ProductID: productID,
		OrderID:   orderID,
		Type:      model.StockOutType(c.Query("type")),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(outs)
}

func (h *StockHandler) GetStockOut(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid stock out ID")
	}
	out, err := h.service.GetStockOut(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *StockHandler) CreateStockOut(c *fiber.Ctx) error {
	var req service.CreateStockOutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	out, err := h.service.CreateStockOut(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock out recorded", "data": out})
}

// POST /api/v1/stock-outs/:id/approve
func (h *StockHandler) ConfirmStockOut(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid stock out ID")
	}
	out, err := h.service.ConfirmStockOut(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock out approved", "data": out})
}

// POST /api/v1/stock-outs/:id/cancel
func (h *StockHandler) CancelStockOut(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid stock out ID")
	}
	out, err := h.service.CancelStockOut(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock out cancelled", "data": out})
}
