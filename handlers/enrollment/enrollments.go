package enrollment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

// EnrollmentHandler serves enrollments, their payments and lesson progress.
type EnrollmentHandler struct {
	enrollments *services.EnrollmentService
	payments    *services.PaymentService
	progress    *services.ProgressService
	validator   *validation.Validator
}

func NewEnrollmentHandler(enrollments *services.EnrollmentService, payments *services.PaymentService, progress *services.ProgressService) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		payments:    payments,
		progress:    progress,
		validator:   validation.NewValidator(),
	}
}

// EnrollRequest is the body of POST /courses/:id/enroll.
type EnrollRequest struct {
	CouponCode string                 `json:"coupon_code" validate:"omitempty,max=50"`
	Payment    *services.PaymentInput `json:"payment"`
}

// Enroll purchases the course for the caller
// POST /api/v1/courses/:id/enroll
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	courseID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req EnrollRequest
	if len(c.Body()) > 0 {
		if err := handlers.Bind(c, h.validator, &req); err != nil {
			return response.FromError(c, err)
		}
	}

	enrollment, err := h.enrollments.Enroll(c.UserContext(), services.EnrollInput{
		UserID:     handlers.Actor(c).UserID,
		CourseID:   courseID,
		CouponCode: req.CouponCode,
		Payment:    req.Payment,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, enrollment)
}

// Unenroll DELETE /api/v1/enrollments/:id
func (h *EnrollmentHandler) Unenroll(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.enrollments.Unenroll(c.UserContext(), id, handlers.Actor(c)); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Unenrolled successfully", nil)
}

// ListMyEnrollments GET /api/v1/enrollments
func (h *EnrollmentHandler) ListMyEnrollments(c *fiber.Ctx) error {
	page := handlers.PageFrom(c)
	enrollments, total, err := h.enrollments.ListUserEnrollments(c.UserContext(), handlers.Actor(c).UserID, page)
	if err != nil {
		return response.FromError(c, err)
	}
	return handlers.Paginated(c, enrollments, page, total)
}

// GetEnrollment GET /api/v1/enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	enrollment, err := h.enrollments.GetEnrollment(c.UserContext(), id, handlers.Actor(c))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, enrollment)
}

// ListCourseEnrollments GET /api/v1/courses/:id/enrollments (course owner or admin)
func (h *EnrollmentHandler) ListCourseEnrollments(c *fiber.Ctx) error {
	courseID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	page := handlers.PageFrom(c)
	enrollments, total, err := h.enrollments.ListCourseEnrollments(c.UserContext(), courseID, handlers.Actor(c), page)
	if err != nil {
		return response.FromError(c, err)
	}
	return handlers.Paginated(c, enrollments, page, total)
}

// CompleteCourse marks every lesson of the course complete for the caller
// POST /api/v1/courses/:id/complete
func (h *EnrollmentHandler) CompleteCourse(c *fiber.Ctx) error {
	courseID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	summary, err := h.enrollments.MarkCourseCompleted(c.UserContext(), handlers.Actor(c).UserID, courseID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Course marked as completed", summary)
}
