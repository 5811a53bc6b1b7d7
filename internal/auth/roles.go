package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helli-it/support-tracker/internal/domain"
	apperrors "github.com/helli-it/support-tracker/pkg/util"
)

// RequireAuth ensures the caller is authenticated.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := PrincipalFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireRole ensures the acting user has one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor := ActorFromContext(c)
		if actor == nil {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, ok := allowedSet[actor.Role]; !ok {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
