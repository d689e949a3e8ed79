package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// HandleCheckHealth reports whether the database answers.
// GET /ping
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "Database is unavailable")
	}
	return response.Success(c, fiber.Map{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
