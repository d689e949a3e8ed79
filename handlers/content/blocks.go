package content

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

// ContentHandler serves banners, menus and widgets.
type ContentHandler struct {
	content   *services.ContentService
	validator *validation.Validator
}

func NewContentHandler(content *services.ContentService) *ContentHandler {
	return &ContentHandler{content: content, validator: validation.NewValidator()}
}

// ListActive returns the active blocks of one kind in display order.
// GET /api/v1/content/:kind
func (h *ContentHandler) ListActive(c *fiber.Ctx) error {
	blocks, err := h.content.ListActive(c.UserContext(), model.ContentKind(c.Params("kind")))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, blocks)
}

// ListAll GET /api/v1/admin/content?kind=
func (h *ContentHandler) ListAll(c *fiber.Ctx) error {
	blocks, err := h.content.ListAll(c.UserContext(), model.ContentKind(c.Query("kind")))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, blocks)
}

// Get GET /api/v1/admin/content/:id
func (h *ContentHandler) Get(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	block, err := h.content.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, block)
}

// Create POST /api/v1/admin/content
func (h *ContentHandler) Create(c *fiber.Ctx) error {
	var req services.ContentBlockInput
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	block, err := h.content.Create(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, block)
}

// Update PATCH /api/v1/admin/content/:id
func (h *ContentHandler) Update(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.ContentBlockPatch
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	block, err := h.content.Update(c.UserContext(), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, block)
}

// Delete DELETE /api/v1/admin/content/:id
func (h *ContentHandler) Delete(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.content.Delete(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Content block deleted", nil)
}
