package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

const reportDateLayout = "2006-01-02"

// RevenueReport sums completed payments per course
// GET /api/v1/admin/reports/revenue?from=2024-01-01&to=2024-02-01&course_ids=1,2
func (h *AdminHandler) RevenueReport(c *fiber.Ctx) error {
	now := time.Now().UTC()
	from, err := parseDate(c.Query("from"), now.AddDate(0, 0, -30), "from")
	if err != nil {
		return response.FromError(c, err)
	}
	to, err := parseDate(c.Query("to"), now, "to")
	if err != nil {
		return response.FromError(c, err)
	}

	var courseIDs []int64
	if raw := c.Query("course_ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || id <= 0 {
				return response.FromError(c, apierr.Validation(apierr.FieldError{Field: "course_ids", Message: "must be a comma separated list of ids"}))
			}
			courseIDs = append(courseIDs, id)
		}
	}

	rows, err := h.admin.RevenueReport(c.UserContext(), from, to, courseIDs)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{
		"from":    from.Format(reportDateLayout),
		"to":      to.Format(reportDateLayout),
		"courses": rows,
	})
}

// EnrollmentTrend returns daily enrollment counts
// GET /api/v1/admin/reports/enrollments?days=30
func (h *AdminHandler) EnrollmentTrend(c *fiber.Ctx) error {
	rows, err := h.admin.EnrollmentTrend(c.UserContext(), c.QueryInt("days", 30))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, rows)
}

func parseDate(raw string, fallback time.Time, field string) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(reportDateLayout, raw)
	if err != nil {
		return time.Time{}, apierr.Validation(apierr.FieldError{Field: field, Message: "must be a date in YYYY-MM-DD format"})
	}
	return t, nil
}
