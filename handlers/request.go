package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

var errInvalidBody = apierr.BadRequest("BAD_REQUEST", "Invalid request body")

// ParamID reads a positive numeric path parameter.
func ParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apierr.BadRequest("INVALID_ID", "Invalid "+name)
	}
	return uint(id), nil
}

// QueryID reads an optional numeric query parameter. Missing means zero.
func QueryID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apierr.BadRequest("INVALID_QUERY", "Invalid "+name)
	}
	return uint(id), nil
}

// Actor is the authenticated caller, or the zero Actor for anonymous requests.
func Actor(c *fiber.Ctx) services.Actor {
	id, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	return services.Actor{UserID: id, Role: role}
}

// PageFrom reads page and limit from the query string.
func PageFrom(c *fiber.Ctx) services.Page {
	return services.Page{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 20)}.Normalize()
}

// Bind parses the JSON body into dst and validates it.
func Bind(c *fiber.Ctx, v *validation.Validator, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	return v.Check(dst)
}

// Paginated writes one page of results.
func Paginated(c *fiber.Ctx, data interface{}, page services.Page, total int64) error {
	return response.Paginated(c, data, response.CalculatePagination(page.Page, page.Limit, total))
}
