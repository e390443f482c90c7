package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	applog "stockroom/internal/log"
)

// RequireToken guards mutations with a bearer token compared against a
// bcrypt hash. An empty hash disables the check.
func RequireToken(hash string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if hash == "" {
			return c.Next()
		}
		auth := c.Get(fiber.HeaderAuthorization)
		tok, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || tok == "" {
			applog.Security(c, "auth.missing", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized."})
		}
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(tok)); err != nil {
			applog.Security(c, "auth.denied", nil)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized."})
		}
		return c.Next()
	}
}
