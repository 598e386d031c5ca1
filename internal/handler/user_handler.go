package handler

import (
	"go-warehouse-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUser handles user creation
// POST /api/v1/users
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.userService.CreateUser(c.UserContext(), &req, actor(c))
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"data":    user,
	})
}

// GetUsers returns all users
// GET /api/v1/users
func (h *UserHandler) GetUsers(c *fiber.Ctx) error {
	users, err := h.userService.GetAllUsers(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(users)
}

// GetUser returns a single user by ID
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	userID, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	user, err := h.userService.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(user)
}

// UpdateUser handles user update
// PUT /api/v1/users/:id
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	userID, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	var req service.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid JSON")
	}

	user, err := h.userService.UpdateUser(c.UserContext(), userID, &req, actor(c))
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "User updated successfully",
		"data":    user,
	})
}

// DeleteUser handles user deletion
// DELETE /api/v1/users/:id
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	userID, err := paramID(c)
	if err != nil {
		return badRequest(c, "Invalid user ID")
	}

	if actor(c).ID == userID.String() {
		return badRequest(c, "You cannot delete your own account")
	}

	if err := h.userService.DeleteUser(c.UserContext(), userID); err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
