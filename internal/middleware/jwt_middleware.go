package middleware

import (
	"strings"

	"todoapi/internal/apperr"
	"todoapi/internal/services"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "user_id"

// AuthRequired is a Fiber middleware that accepts only requests carrying a
// valid bearer token and stores the token's user ID in the context.
func AuthRequired(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return apperr.Unauthorized("Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return apperr.Unauthorized("Authorization header format must be 'Bearer <token>'")
		}

		userID, err := tokens.Verify(strings.TrimSpace(parts[1]))
		if err != nil {
			return apperr.Unauthorized("Invalid or expired token")
		}

		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user's ID set by AuthRequired.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(userIDKey).(uint)
	return id, ok && id != 0
}
