package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// ListPublicSettings returns settings flagged public
// GET /api/v1/settings
func (h *AdminHandler) ListPublicSettings(c *fiber.Ctx) error {
	settings, err := h.admin.ListSettings(c.UserContext(), true)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, settings)
}

// ListSettings GET /api/v1/admin/settings
func (h *AdminHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.admin.ListSettings(c.UserContext(), false)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, settings)
}

// GetSetting GET /api/v1/admin/settings/:key
func (h *AdminHandler) GetSetting(c *fiber.Ctx) error {
	setting, err := h.admin.GetSetting(c.UserContext(), c.Params("key"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, setting)
}

// CreateSetting POST /api/v1/admin/settings
func (h *AdminHandler) CreateSetting(c *fiber.Ctx) error {
	var req services.SettingInput
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	setting, err := h.admin.CreateSetting(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, setting)
}

// UpdateSetting PATCH /api/v1/admin/settings/:key
func (h *AdminHandler) UpdateSetting(c *fiber.Ctx) error {
	var req services.SettingPatch
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	setting, err := h.admin.UpdateSetting(c.UserContext(), c.Params("key"), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Setting updated successfully", setting)
}

// DeleteSetting DELETE /api/v1/admin/settings/:key
func (h *AdminHandler) DeleteSetting(c *fiber.Ctx) error {
	if err := h.admin.DeleteSetting(c.UserContext(), c.Params("key")); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Setting deleted successfully", nil)
}
