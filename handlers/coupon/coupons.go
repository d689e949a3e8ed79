package coupon

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/handlers"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/response"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
)

type CouponHandler struct {
	coupons   *services.CouponService
	validator *validation.Validator
}

func NewCouponHandler(coupons *services.CouponService) *CouponHandler {
	return &CouponHandler{
		coupons:   coupons,
		validator: validation.NewValidator(),
	}
}

// Quote prices a course with a coupon code without redeeming it.
// An inapplicable code still answers 200 with coupon_applied=false.
// GET /api/v1/coupons/quote?code=&course_id=
func (h *CouponHandler) Quote(c *fiber.Ctx) error {
	courseID, err := handlers.QueryID(c, "course_id")
	if err != nil {
		return response.FromError(c, err)
	}
	if courseID == 0 {
		return response.ValidationError(c, []apierr.FieldError{{Field: "course_id", Message: "course_id is required"}})
	}

	quote, err := h.coupons.Quote(c.UserContext(), c.Query("code"), courseID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, quote)
}

// ListCoupons GET /api/v1/admin/coupons
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	page := handlers.PageFrom(c)
	coupons, total, err := h.coupons.ListCoupons(c.UserContext(), page)
	if err != nil {
		return response.FromError(c, err)
	}
	return handlers.Paginated(c, coupons, page, total)
}

// GetCoupon GET /api/v1/admin/coupons/:id
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	coupon, err := h.coupons.GetCoupon(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, coupon)
}

// CreateCoupon POST /api/v1/admin/coupons
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req services.CouponInput
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	coupon, err := h.coupons.CreateCoupon(c.UserContext(), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, coupon)
}

// UpdateCoupon PATCH /api/v1/admin/coupons/:id
func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	var req services.CouponPatch
	if err := handlers.Bind(c, h.validator, &req); err != nil {
		return response.FromError(c, err)
	}

	coupon, err := h.coupons.UpdateCoupon(c.UserContext(), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, coupon)
}

// DeleteCoupon DELETE /api/v1/admin/coupons/:id
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := handlers.ParamID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.coupons.DeleteCoupon(c.UserContext(), id); err != nil {
		return response.FromError(c, err)
	}
	return response.SuccessWithMessage(c, "Coupon deleted successfully", nil)
}
