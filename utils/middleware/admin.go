package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminAuditLog records the admin write that follows it in the chain.
// It must run after RequireAdmin. Only mutating methods are logged.
func AdminAuditLog(db *gorm.DB, log *logger.Logger, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok {
			return c.Next()
		}

		method := c.Method()
		if method == fiber.MethodGet || method == fiber.MethodHead || method == fiber.MethodOptions {
			return c.Next()
		}

		// fasthttp reuses the request buffers once the handler returns
		var payload datatypes.JSON
		if body := c.Body(); len(body) > 0 && json.Valid(body) {
			payload = datatypes.JSON(append([]byte(nil), body...))
		}
		entry := model.AdminAuditLog{
			AdminID:     user.ID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID(c),
			Payload:     payload,
			IPAddress:   c.IP(),
			UserAgent:   c.Get(fiber.HeaderUserAgent),
			Description: method + " " + c.Path(),
		}

		err := c.Next()

		entry.StatusCode = c.Response().StatusCode()
		if createErr := db.WithContext(c.UserContext()).Create(&entry).Error; createErr != nil {
			log.Warn("failed to write admin audit log", "action", action, "error", createErr)
		}

		return err
	}
}

func resourceID(c *fiber.Ctx) string {
	if id := c.Params("id"); id != "" {
		return id
	}
	return c.Params("key")
}
