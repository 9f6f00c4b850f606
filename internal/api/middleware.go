package api

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

const InternalTokenHeader = "X-Internal-Token"

// InternalAuth rejects requests without the shared token. An empty token
// disables the check.
func InternalAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}
		got := c.Get(InternalTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid internal token"})
		}
		return c.Next()
	}
}
