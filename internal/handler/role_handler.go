package handler

import (
	"go-warehouse-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type RoleHandler struct {
	userService service.UserService
}

func NewRoleHandler(userService service.UserService) *RoleHandler {
	return &RoleHandler{userService: userService}
}

// GetRoles returns all available roles with their privileges
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.userService.GetRoles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(roles)
}
