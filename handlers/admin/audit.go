package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// ListAuditLogs retrieves admin audit logs, newest first
// GET /api/v1/admin/audit-logs?admin_id=&action=&resource=
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	adminID, err := handlers.QueryID(c, "admin_id")
	if err != nil {
		return response.FromError(c, err)
	}

	page := handlers.PageFrom(c)
	logs, total, err := h.admin.ListAuditLogs(c.UserContext(), services.AuditFilter{
		AdminID:  adminID,
		Action:   c.Query("action"),
		Resource: c.Query("resource"),
		Page:     page,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return handlers.Paginated(c, logs, page, total)
}
