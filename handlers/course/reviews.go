package course

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// ListReviews GET /api/v1/courses/:id/reviews
func (h *CourseHandler) ListReviews(c *fiber.Ctx) error {
	courseID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	page := handlers.PageFrom(c)
	result, err := h.reviews.ListReviews(c.UserContext(), courseID, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{
		"reviews":        result.Reviews,
		"average_rating": result.AverageRating,
		"pagination":     response.CalculatePagination(page.Page, page.Limit, result.Total),
	})
}

// CreateReview POST /api/v1/courses/:id/reviews
func (h *CourseHandler) CreateReview(c *fiber.Ctx) error {
	courseID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.ReviewInput
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	review, err := h.reviews.CreateReview(c.UserContext(), handlers.Actor(c), courseID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, review)
}

// UpdateReview PATCH /api/v1/reviews/:id
func (h *CourseHandler) UpdateReview(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.ReviewPatch
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	review, err := h.reviews.UpdateReview(c.UserContext(), handlers.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, review)
}

// DeleteReview DELETE /api/v1/reviews/:id
func (h *CourseHandler) DeleteReview(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.reviews.DeleteReview(c.UserContext(), handlers.Actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Review deleted successfully", nil)
}
