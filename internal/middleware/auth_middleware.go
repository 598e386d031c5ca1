package middleware

import (
	"strings"

	"go-warehouse-inventory/internal/model"
	"go-warehouse-inventory/internal/service"
	"go-warehouse-inventory/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const (
	localUser  = "user"
	localActor = "actor"
)

// RequireAuth validates the bearer token against the current session and
// stores the user and actor for downstream handlers.
func RequireAuth(authService service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		resp, err := authService.ValidateToken(c.UserContext(), parts[1])
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, service.ErrSessionReplaced) || errors.Is(err, service.ErrUserInactive) {
				msg = err.Error()
			} else if !errors.Is(err, jwt.ErrInvalidToken) && !errors.Is(err, jwt.ErrMissingToken) {
				return err
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": msg})
		}

		c.Locals(localUser, resp)
		c.Locals(localActor, resp.Actor())
		return c.Next()
	}
}

// User returns the session stored by RequireAuth, or nil.
func User(c *fiber.Ctx) *service.TokenValidationResponse {
	resp, _ := c.Locals(localUser).(*service.TokenValidationResponse)
	return resp
}

func ActorFrom(c *fiber.Ctx) model.Actor {
	actor, _ := c.Locals(localActor).(model.Actor)
	return actor
}

func privileges(c *fiber.Ctx) ([]string, bool) {
	resp := User(c)
	if resp == nil {
		return nil, false
	}
	return resp.Privileges, true
}

// HasPrivilege reports whether the authenticated user holds privilege.
func HasPrivilege(c *fiber.Ctx, privilege string) bool {
	privs, _ := privileges(c)
	for _, p := range privs {
		if p == privilege {
			return true
		}
	}
	return false
}

// Forbidden answers 403 naming the missing privilege.
func Forbidden(c *fiber.Ctx, privilege string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "Forbidden: requires '" + privilege + "' privilege",
	})
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := privileges(c); !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}
		if HasPrivilege(c, requiredPrivilege) {
			return c.Next()
		}
		return Forbidden(c, requiredPrivilege)
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privs, ok := privileges(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privs {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
