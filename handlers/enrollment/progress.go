package enrollment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

type ProgressRequest struct {
	Percentage  int  `json:"percentage"`
	IsCompleted bool `json:"is_completed"`
}

// UpdateProgress records the caller's progress on a lesson. The percentage
// range is enforced by the service so the field error names "percentage".
// PUT /api/v1/courses/:id/lessons/:lessonId/progress
func (h *EnrollmentHandler) UpdateProgress(c *fiber.Ctx) error {
	courseID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	lessonID, err := handlers.ParamID(c, "lessonId")
	if err != nil {
		return response.FromError(c, err)
	}

	var req ProgressRequest
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	progress, err := h.progress.UpdateProgress(c.UserContext(), services.UpdateProgressInput{
		UserID:      handlers.Actor(c).UserID,
		CourseID:    courseID,
		LessonID:    lessonID,
		Percentage:  req.Percentage,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, progress)
}

// GetCourseProgress GET /api/v1/courses/:id/progress
func (h *EnrollmentHandler) GetCourseProgress(c *fiber.Ctx) error {
	courseID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	summary, err := h.progress.GetCourseProgress(c.UserContext(), handlers.Actor(c).UserID, courseID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, summary)
}
