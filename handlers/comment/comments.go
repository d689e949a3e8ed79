package comment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

type CommentHandler struct {
	comments  *services.CommentService
	validator *validation.Validator
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments, validator: validation.NewValidator()}
}

// ListComments GET /api/v1/lessons/:id/comments
func (h *CommentHandler) ListComments(c *fiber.Ctx) error {
	lessonID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	page := handlers.PageFrom(c)
	comments, total, err := h.comments.ListComments(c.UserContext(), handlers.Actor(c), lessonID, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return handlers.Paginated(c, comments, page, total)
}

// CreateComment POST /api/v1/lessons/:id/comments
func (h *CommentHandler) CreateComment(c *fiber.Ctx) error {
	lessonID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.CommentInput
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	comment, err := h.comments.CreateComment(c.UserContext(), handlers.Actor(c), lessonID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, comment)
}

type updateCommentRequest struct {
	Body string `json:"body" validate:"required,max=5000"`
}

// UpdateComment PATCH /api/v1/comments/:id
func (h *CommentHandler) UpdateComment(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req updateCommentRequest
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	comment, err := h.comments.UpdateComment(c.UserContext(), handlers.Actor(c), id, req.Body)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, comment)
}

// DeleteComment DELETE /api/v1/comments/:id
func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.comments.DeleteComment(c.UserContext(), handlers.Actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Comment deleted successfully", nil)
}
