package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
)

// CouponService manages discount codes and quotes prices against them.
type CouponService struct {
	db      *gorm.DB
	catalog *CatalogService
	log     *logger.Logger
	now     func() time.Time
}

func NewCouponService(db *gorm.DB, catalog *CatalogService, log *logger.Logger) *CouponService {
	return &CouponService{db: db, catalog: catalog, log: orNop(log), now: time.Now}
}

// NormalizeCouponCode is the stored form of a code; lookups are case-insensitive.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Quote is the price of a course after an optional coupon.
type Quote struct {
	CourseID      uint   `json:"course_id"`
	Currency      string `json:"currency"`
	OriginalPrice int64  `json:"original_price"`
	Discount      int64  `json:"discount_amount"`
	Total         int64  `json:"total_amount"`
	CouponCode    string `json:"coupon_code,omitempty"`
	Applied       bool   `json:"coupon_applied"`
	Reason        string `json:"reason,omitempty"`

	coupon *model.Coupon
}

// Quote prices courseID with code without redeeming it.
func (s *CouponService) Quote(ctx context.Context, code string, courseID uint) (*Quote, error) {
	course, err := s.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return s.quote(ctx, s.db, code, course)
}

// quote prices course with code. An inapplicable or unknown code yields a
// zero discount with Reason set; only storage failures are errors.
func (s *CouponService) quote(ctx context.Context, db *gorm.DB, code string, course *model.Course) (*Quote, error) {
	price := course.EffectivePrice()
	q := &Quote{
		CourseID:      course.ID,
		Currency:      course.Currency,
		OriginalPrice: price,
		Total:         price,
		CouponCode:    NormalizeCouponCode(code),
	}
	if q.CouponCode == "" {
		return q, nil
	}

	var coupon model.Coupon
	err := db.WithContext(ctx).Where("code = ?", q.CouponCode).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			q.Reason = "coupon not found"
			return q, nil
		}
		return nil, storageError(s.log, "find coupon", err)
	}

	if !coupon.IsApplicable(course.ID, s.now()) {
		q.Reason = inapplicableReason(&coupon, course.ID, s.now())
		return q, nil
	}

	q.Discount = coupon.Discount(price)
	q.Total = price - q.Discount
	q.Applied = true
	q.coupon = &coupon
	return q, nil
}

func inapplicableReason(c *model.Coupon, courseID uint, now time.Time) string {
	switch {
	case !c.IsActive:
		return "coupon is inactive"
	case c.ValidFrom != nil && now.Before(*c.ValidFrom):
		return "coupon is not valid yet"
	case c.ValidUntil != nil && now.After(*c.ValidUntil):
		return "coupon has expired"
	case c.MaxUses != nil && c.UsedCount >= *c.MaxUses:
		return "coupon usage limit reached"
	case c.CourseID != nil && *c.CourseID != courseID:
		return "coupon does not apply to this course"
	}
	return ""
}

// redeem atomically consumes one use of a coupon inside tx. It reports false
// when the coupon was deactivated or exhausted after it was quoted.
func (s *CouponService) redeem(tx *gorm.DB, couponID uint) (bool, error) {
	result := tx.Model(&model.Coupon{}).
		Where("id = ? AND is_active = ? AND (max_uses IS NULL OR used_count < max_uses)", couponID, true).
		UpdateColumn("used_count", gorm.Expr("used_count + ?", 1))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CouponInput is the body of a new coupon.
type CouponInput struct {
	Code        string           `json:"code" validate:"required,min=3,max=50"`
	Description string           `json:"description" validate:"omitempty,max=1000"`
	Type        model.CouponType `json:"type" validate:"required,oneof=percentage fixed"`
	Value       int64            `json:"value" validate:"required,gt=0"`
	MaxUses     *int             `json:"max_uses" validate:"omitempty,gte=1"`
	ValidFrom   *time.Time       `json:"valid_from"`
	ValidUntil  *time.Time       `json:"valid_until"`
	IsActive    *bool            `json:"is_active"`
	CourseID    *uint            `json:"course_id" validate:"omitempty,min=1"`
}

func (s *CouponService) CreateCoupon(ctx context.Context, in CouponInput) (*model.Coupon, error) {
	coupon := model.Coupon{
		Code:        NormalizeCouponCode(in.Code),
		Description: in.Description,
		Type:        in.Type,
		Value:       in.Value,
		MaxUses:     in.MaxUses,
		ValidFrom:   in.ValidFrom,
		ValidUntil:  in.ValidUntil,
		IsActive:    in.IsActive == nil || *in.IsActive,
		CourseID:    in.CourseID,
	}
	if err := validateCoupon(&coupon); err != nil {
		return nil, err
	}
	if coupon.CourseID != nil {
		if _, err := s.catalog.loadCourse(ctx, *coupon.CourseID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Create(&coupon).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrCouponCodeTaken
		}
		return nil, storageError(s.log, "create coupon", err)
	}
	return &coupon, nil
}

func validateCoupon(c *model.Coupon) error {
	var fields []apierr.FieldError
	if c.Type == model.CouponTypePercentage && (c.Value < 1 || c.Value > 100) {
		fields = append(fields, apierr.FieldError{Field: "value", Message: "percentage value must be between 1 and 100"})
	}
	if c.Value <= 0 {
		fields = append(fields, apierr.FieldError{Field: "value", Message: "value must be positive"})
	}
	if c.ValidFrom != nil && c.ValidUntil != nil && c.ValidUntil.Before(*c.ValidFrom) {
		fields = append(fields, apierr.FieldError{Field: "valid_until", Message: "valid_until must be after valid_from"})
	}
	if c.MaxUses != nil && *c.MaxUses < c.UsedCount {
		fields = append(fields, apierr.FieldError{Field: "max_uses", Message: "max_uses cannot be below the current used count"})
	}
	if len(fields) > 0 {
		return apierr.Validation(fields...)
	}
	return nil
}

func (s *CouponService) GetCoupon(ctx context.Context, couponID uint) (*model.Coupon, error) {
	var coupon model.Coupon
	if err := s.db.WithContext(ctx).First(&coupon, couponID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, storageError(s.log, "get coupon", err)
	}
	return &coupon, nil
}

func (s *CouponService) ListCoupons(ctx context.Context, page Page) ([]model.Coupon, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Coupon{}).Count(&total).Error; err != nil {
		return nil, 0, storageError(s.log, "count coupons", err)
	}

	page = page.Normalize()
	var coupons []model.Coupon
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").
		Limit(page.Limit).Offset(page.Offset()).Find(&coupons).Error
	if err != nil {
		return nil, 0, storageError(s.log, "list coupons", err)
	}
	return coupons, total, nil
}

// CouponPatch is a partial coupon update. UsedCount is never patchable.
type CouponPatch struct {
	Description     *string           `json:"description" validate:"omitempty,max=1000"`
	Type            *model.CouponType `json:"type" validate:"omitempty,oneof=percentage fixed"`
	Value           *int64            `json:"value" validate:"omitempty,gt=0"`
	MaxUses         *int              `json:"max_uses" validate:"omitempty,gte=1"`
	ClearMaxUses    bool              `json:"clear_max_uses"`
	ValidFrom       *time.Time        `json:"valid_from"`
	ValidUntil      *time.Time        `json:"valid_until"`
	ClearValidity   bool              `json:"clear_validity"`
	IsActive        *bool             `json:"is_active"`
	CourseID        *uint             `json:"course_id" validate:"omitempty,min=1"`
	ClearCourseLink bool              `json:"clear_course"`
}

// apply writes the patch onto c and returns the changed columns.
func (p CouponPatch) apply(c *model.Coupon) map[string]interface{} {
	u := map[string]interface{}{}
	if p.Description != nil {
		c.Description = *p.Description
		u["description"] = c.Description
	}
	if p.Type != nil {
		c.Type = *p.Type
		u["type"] = c.Type
	}
	if p.Value != nil {
		c.Value = *p.Value
		u["value"] = c.Value
	}
	if p.ClearMaxUses {
		c.MaxUses = nil
		u["max_uses"] = nil
	} else if p.MaxUses != nil {
		c.MaxUses = p.MaxUses
		u["max_uses"] = *p.MaxUses
	}
	if p.ClearValidity {
		c.ValidFrom, c.ValidUntil = nil, nil
		u["valid_from"] = nil
		u["valid_until"] = nil
	} else {
		if p.ValidFrom != nil {
			c.ValidFrom = p.ValidFrom
			u["valid_from"] = *p.ValidFrom
		}
		if p.ValidUntil != nil {
			c.ValidUntil = p.ValidUntil
			u["valid_until"] = *p.ValidUntil
		}
	}
	if p.IsActive != nil {
		c.IsActive = *p.IsActive
		u["is_active"] = c.IsActive
	}
	if p.ClearCourseLink {
		c.CourseID = nil
		u["course_id"] = nil
	} else if p.CourseID != nil {
		c.CourseID = p.CourseID
		u["course_id"] = *p.CourseID
	}
	return u
}

func (s *CouponService) UpdateCoupon(ctx context.Context, couponID uint, patch CouponPatch) (*model.Coupon, error) {
	coupon, err := s.GetCoupon(ctx, couponID)
	if err != nil {
		return nil, err
	}

	updates := patch.apply(coupon)
	if len(updates) == 0 {
		return coupon, nil
	}
	if err := validateCoupon(coupon); err != nil {
		return nil, err
	}
	if patch.CourseID != nil && !patch.ClearCourseLink {
		if _, err := s.catalog.loadCourse(ctx, *patch.CourseID); err != nil {
			return nil, err
		}
	}

	if err := s.db.WithContext(ctx).Model(&model.Coupon{}).Where("id = ?", couponID).Updates(updates).Error; err != nil {
		return nil, storageError(s.log, "update coupon", err)
	}
	return s.GetCoupon(ctx, couponID)
}

func (s *CouponService) DeleteCoupon(ctx context.Context, couponID uint) error {
	result := s.db.WithContext(ctx).Delete(&model.Coupon{}, couponID)
	if result.Error != nil {
		return storageError(s.log, "delete coupon", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCouponNotFound
	}
	return nil
}

// DeactivateExpired switches off active coupons whose window has closed.
func (s *CouponService) DeactivateExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Coupon{}).
		Where("is_active = ? AND valid_until IS NOT NULL AND valid_until < ?", true, s.now()).
		Update("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
