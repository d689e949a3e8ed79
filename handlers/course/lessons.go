package course

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

// MaxMediaSize caps lesson media uploads.
const MaxMediaSize = 500 * 1024 * 1024

// ListLessons returns the lesson outline of a course
// GET /api/v1/courses/:id/lessons
func (h *CourseHandler) ListLessons(c *fiber.Ctx) error {
	courseID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	lessons, err := h.catalog.ListLessons(c.UserContext(), courseID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, lessons)
}

// GetLesson returns a lesson with its content. Preview lessons are public;
// the rest need an enrollment, course ownership or the admin role.
// GET /api/v1/lessons/:id
func (h *CourseHandler) GetLesson(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	lesson, err := h.catalog.GetLesson(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if !lesson.IsPreview {
		if err := h.catalog.CheckCourseAccess(c.UserContext(), handlers.Actor(c), lesson.CourseID); err != nil {
			return response.FromError(c, err)
		}
	}
	return response.Success(c, lesson)
}

// CreateLesson POST /api/v1/courses/:id/lessons
func (h *CourseHandler) CreateLesson(c *fiber.Ctx) error {
	courseID, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.LessonInput
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	lesson, err := h.catalog.CreateLesson(c.UserContext(), handlers.Actor(c), courseID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, lesson)
}

// UpdateLesson PATCH /api/v1/lessons/:id
func (h *CourseHandler) UpdateLesson(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.LessonPatch
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	lesson, err := h.catalog.UpdateLesson(c.UserContext(), handlers.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, lesson)
}

// DeleteLesson DELETE /api/v1/lessons/:id
func (h *CourseHandler) DeleteLesson(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.catalog.DeleteLesson(c.UserContext(), handlers.Actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Lesson deleted successfully", nil)
}

// GetLessonMedia returns a short-lived download URL for the lesson media
// GET /api/v1/lessons/:id/media
func (h *CourseHandler) GetLessonMedia(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	url, err := h.media.LessonMediaURL(c.UserContext(), handlers.Actor(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, url)
}

// UploadLessonMedia accepts a multipart "file" and attaches it to the lesson
// POST /api/v1/lessons/:id/media
func (h *CourseHandler) UploadLessonMedia(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "No file provided")
	}
	if header.Size > MaxMediaSize {
		return response.Error(c, fiber.StatusRequestEntityTooLarge, "File exceeds the 500MB limit", "PAYLOAD_TOO_LARGE")
	}

	file, err := header.Open()
	if err != nil {
		return response.BadRequest(c, "Unable to read uploaded file")
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	lesson, err := h.media.UploadLessonMedia(c.UserContext(), handlers.Actor(c), id, header.Filename, file)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Media uploaded successfully", lesson)
}
