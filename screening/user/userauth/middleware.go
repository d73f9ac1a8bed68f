package userauth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Abraxas-365/cvscreen/pkg/kernel"
)

// Middleware validates bearer tokens and stores the user identity in locals.
func Middleware(tokenService *TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing authorization header")
		}

		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization format")
		}

		claims, err := tokenService.ValidateAccessToken(parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		c.Locals("user_id", claims.UserID)
		c.Locals("user_email", claims.Email)

		return c.Next()
	}
}

// GetUserID extracts the authenticated user ID from context
func GetUserID(c *fiber.Ctx) (kernel.UserID, bool) {
	userID, ok := c.Locals("user_id").(kernel.UserID)
	return userID, ok
}

// GetUserEmail extracts the authenticated user email from context
func GetUserEmail(c *fiber.Ctx) (kernel.Email, bool) {
	email, ok := c.Locals("user_email").(kernel.Email)
	return email, ok
}
