package course

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

// CourseHandler serves the catalog: categories, courses, lessons, lesson media and reviews
type CourseHandler struct {
	catalog   *services.CatalogService
	media     *services.MediaService
	reviews   *services.ReviewService
	validator *validation.Validator
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(catalog *services.CatalogService, media *services.MediaService, reviews *services.ReviewService) *CourseHandler {
	return &CourseHandler{
		catalog:   catalog,
		media:     media,
		reviews:   reviews,
		validator: validation.NewValidator(),
	}
}

// ListCourses lists courses. Anonymous callers and students only see
// published courses; `mine=true` lists the caller's own courses.
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	categoryID, err := handlers.QueryID(c, "category_id")
	if err != nil {
		return response.FromError(c, err)
	}
	instructorID, err := handlers.QueryID(c, "instructor_id")
	if err != nil {
		return response.FromError(c, err)
	}

	actor := handlers.Actor(c)
	page := handlers.PageFrom(c)
	filter := services.CourseFilter{
		CategoryID:   categoryID,
		InstructorID: instructorID,
		Search:       c.Query("search"),
		Page:         page,
	}

	published := true
	switch {
	case c.QueryBool("mine") && actor.UserID != 0:
		filter.InstructorID = actor.UserID
		if raw := c.Query("published"); raw != "" {
			published = c.QueryBool("published")
			filter.Published = &published
		}
	case actor.IsAdmin() && c.Query("published") != "":
		published = c.QueryBool("published")
		filter.Published = &published
	case actor.IsAdmin():
	default:
		filter.Published = &published
	}

	courses, total, err := h.catalog.ListCourses(c.UserContext(), filter)
	if err != nil {
		return response.FromError(c, err)
	}
	return handlers.Paginated(c, courses, page, total)
}

// GetCourse returns a course with its lesson outline. Unpublished courses are
// visible to their instructor and admins only.
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	course, err := h.catalog.GetCourse(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	if !course.IsPublished && !handlers.Actor(c).CanManage(course.InstructorID) {
		return response.FromError(c, services.ErrCourseNotFound)
	}
	return response.Success(c, course)
}

// CreateCourse creates a course owned by the caller
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req services.CreateCourseInput
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}
	req.Description = validation.SanitizeString(req.Description)

	course, err := h.catalog.CreateCourse(c.UserContext(), handlers.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, course)
}

// UpdateCourse applies a partial update
// PATCH /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.CoursePatch
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	course, err := h.catalog.UpdateCourse(c.UserContext(), handlers.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Course updated successfully", course)
}

// DeleteCourse soft-deletes a course
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.catalog.DeleteCourse(c.UserContext(), handlers.Actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Course deleted successfully", nil)
}
