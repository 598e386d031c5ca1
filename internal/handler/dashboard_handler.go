package handler

import (
	"go-warehouse-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
	audit   service.AuditService
}

func NewDashboardHandler(s service.DashboardService, audit service.AuditService) *DashboardHandler {
	return &DashboardHandler{service: s, audit: audit}
}

// GetDashboard returns overview statistics, recent orders and low stock
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	d, err := h.service.GetDashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(d)
}

// GetStockMovement returns stock movement data for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(c.UserContext(), days)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetFinancialSummary returns revenue and stock-in cost
// Query params: days (default 30)
func (h *DashboardHandler) GetFinancialSummary(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)
	summary, err := h.service.GetFinancialSummary(c.UserContext(), days)
	if err != nil {
		return err
	}
	return c.JSON(summary)
}

func (h *DashboardHandler) GetForecasts(c *fiber.Ctx) error {
	forecasts, err := h.service.GetForecasts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(forecasts)
}

// Recount reports products whose ledger disagrees with their movements
func (h *DashboardHandler) Recount(c *fiber.Ctx) error {
	drifts, err := h.audit.Recount(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"consistent": len(drifts) == 0, "drift": drifts})
}
