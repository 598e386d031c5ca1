package handler

import (
	"go-warehouse-inventory/internal/middleware"
	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrNotFound, fiber.StatusNotFound},
	{service.ErrValidation, fiber.StatusBadRequest},
	{service.ErrConflict, fiber.StatusConflict},
	{service.ErrAlreadyProcessed, fiber.StatusConflict},
	{service.ErrAlreadyCancelled, fiber.StatusConflict},
	{service.ErrOrderActive, fiber.StatusConflict},
	{service.ErrReversalConflict, fiber.StatusConflict},
	{service.ErrTerminalState, fiber.StatusConflict},
	{service.ErrInsufficientStock, fiber.StatusUnprocessableEntity},
	{service.ErrInvalidTransition, fiber.StatusUnprocessableEntity},
	{service.ErrInactiveProduct, fiber.StatusUnprocessableEntity},
	{service.ErrInactiveSupplier, fiber.StatusUnprocessableEntity},
	{service.ErrInvalidCredentials, fiber.StatusUnauthorized},
	{service.ErrUserInactive, fiber.StatusUnauthorized},
	{service.ErrSessionReplaced, fiber.StatusUnauthorized},
	{service.ErrWrongPassword, fiber.StatusBadRequest},
}

// fail writes the status that matches err. Unknown errors go to the app error handler as 500.
func fail(c *fiber.Ctx, err error) error {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return c.Status(e.status).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return err
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func paramID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func actor(c *fiber.Ctx) model.Actor {
	return middleware.ActorFrom(c)
}
