package auth

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// Header is the request header carrying the API key.
const Header = "X-API-Key"

// Config holds configuration for the auth middleware.
type Config struct {
	// ApiKey is the expected key. An empty key disables the check.
	ApiKey string
}

// New returns a middleware that rejects requests without the configured key.
func New(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.ApiKey == "" {
			return c.Next()
		}

		key := c.Get(Header)
		if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.ApiKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or missing API key"})
		}
		return c.Next()
	}
}
