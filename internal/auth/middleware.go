package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/game-rental-service/internal/domain"
	apperrors "github.com/spec-kit/game-rental-service/pkg/util"
)

const claimsKey = "auth_claims"

// Require returns a handler that authenticates the bearer token and
// enforces an at-least role check before the route handler runs.
func Require(tokens *TokenManager, role domain.Role) fiber.Handler {
	return requireRole(tokens, role, false)
}

// RequireExact enforces an exact role match. Used by the second-factor
// endpoint, which accepts only PARTIALLY_LOGGED_IN tokens.
func RequireExact(tokens *TokenManager, role domain.Role) fiber.Handler {
	return requireRole(tokens, role, true)
}

func requireRole(tokens *TokenManager, role domain.Role, exact bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c)
		if err != nil {
			return err
		}

		claims, err := tokens.Verify(token, role, exact)
		if err != nil {
			return err
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", apperrors.NewUnauthenticated("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.NewUnauthenticated("invalid authorization header")
	}
	return parts[1], nil
}

// ClaimsFromContext retrieves the verified token claims.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	val := c.Locals(claimsKey)
	if val == nil {
		return nil, false
	}
	claims, ok := val.(*Claims)
	return claims, ok
}
