package course

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// ListCategories GET /api/v1/categories
func (h *CourseHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, categories)
}

// CreateCategory POST /api/v1/categories (admin)
func (h *CourseHandler) CreateCategory(c *fiber.Ctx) error {
	var req services.CategoryInput
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	category, err := h.catalog.CreateCategory(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, category)
}

// UpdateCategory PATCH /api/v1/categories/:id (admin)
func (h *CourseHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.CategoryPatch
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	category, err := h.catalog.UpdateCategory(c.UserContext(), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, category)
}

// DeleteCategory DELETE /api/v1/categories/:id (admin)
func (h *CourseHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.catalog.DeleteCategory(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Category deleted successfully", nil)
}
