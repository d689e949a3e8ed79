package utils

import (
	fiber "github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// MakeHTTPHandleFunc adapts a store-aware handler to a fiber.Handler. Errors it
// returns are written through the standard error envelope.
func MakeHTTPHandleFunc(handler func(c *fiber.Ctx, store database.Storage) error, store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := handler(c, store); err != nil {
			return response.FromError(c, err)
		}
		return nil
	}
}
