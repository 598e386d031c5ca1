package handler

import (
	"go-warehouse-inventory/internal/middleware"
	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/repository"
	"go-warehouse-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

type statusRequest struct {
	Status model.OrderStatus `json:"status"`
}

// GET /api/v1/orders?status=&search=&limit=
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.service.List(c.UserContext(), repository.OrderFilter{
		Status: model.OrderStatus(c.Query("status")),
		Search: c.Query("search"),
		Limit:  c.QueryInt("limit"),
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	order, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	order, err := h.service.Create(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Order created", "data": order})
}

func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	var req service.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	order, err := h.service.Update(c.UserContext(), id, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order updated", "data": order})
}

// POST /api/v1/orders/:id/confirm
func (h *OrderHandler) ConfirmOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	order, err := h.service.Confirm(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order confirmed", "data": order})
}

// POST /api/v1/orders/:id/cancel
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	order, err := h.service.Cancel(c.UserContext(), id, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order cancelled", "data": order})
}

// PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid order ID")
	}
	var req statusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}
	if need := statusPrivilege(req.Status); !middleware.HasPrivilege(c, need) {
		return middleware.Forbidden(c, need)
	}
	order, err := h.service.UpdateStatus(c.UserContext(), id, req.Status, actor(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order status updated", "data": order})
}

// statusPrivilege is the privilege a status change needs: cancelling needs the
// cancel privilege and every forward step needs the confirm privilege.
func statusPrivilege(next model.OrderStatus) string {
	if next == model.OrderCancelled {
		return model.PrivOrderCancel
	}
	return model.PrivOrderConfirm
}
