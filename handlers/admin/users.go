package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

// AdminHandler serves the admin console: users, settings, audit logs and reports
type AdminHandler struct {
	admin     *services.AdminService
	validator *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin, validator: validation.NewValidator()}
}

// ListUsers retrieves users with pagination and filters
// GET /api/v1/admin/users?role=&status=&search=
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	page := handlers.PageFrom(c)
	users, total, err := h.admin.ListUsers(c.UserContext(), services.UserFilter{
		Role:   c.Query("role"),
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   page,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return handlers.Paginated(c, users, page, total)
}

// GetUser GET /api/v1/admin/users/:id
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	user, err := h.admin.GetUser(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, user)
}

// UpdateUser changes a user's name, role or status. Role and status changes
// sign the user out everywhere.
// PATCH /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.UserPatch
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	user, err := h.admin.UpdateUser(c.UserContext(), handlers.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "User updated successfully", user)
}
