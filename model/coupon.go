package model

import (
	"time"

	"gorm.io/gorm"
)

// CouponType selects how a coupon value is applied.
type CouponType string

const (
	CouponTypePercentage CouponType = "percentage"
	CouponTypeFixed      CouponType = "fixed"
)

// Coupon is a discount code. UsedCount only ever grows and never exceeds MaxUses when set.
type Coupon struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Code        string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	Type        CouponType     `gorm:"type:varchar(20);not null" json:"type"`
	Value       int64          `gorm:"not null" json:"value"` // percent for percentage, minor units for fixed
	MaxUses     *int           `json:"max_uses,omitempty"`
	UsedCount   int            `gorm:"not null;default:0" json:"used_count"`
	ValidFrom   *time.Time     `json:"valid_from,omitempty"`
	ValidUntil  *time.Time     `json:"valid_until,omitempty"`
	IsActive    bool           `gorm:"not null" json:"is_active"`
	CourseID    *uint          `gorm:"index" json:"course_id,omitempty"` // nil = any course
}

// IsApplicable reports whether the coupon can be redeemed for courseID at now.
func (c *Coupon) IsApplicable(courseID uint, now time.Time) bool {
	if !c.IsActive {
		return false
	}
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return false
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return false
	}
	if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
		return false
	}
	if c.CourseID != nil && *c.CourseID != courseID {
		return false
	}
	return true
}

// Discount computes the discount on price, clamped to [0, price].
func (c *Coupon) Discount(price int64) int64 {
	var d int64
	switch c.Type {
	case CouponTypePercentage:
		d = price * c.Value / 100
	case CouponTypeFixed:
		d = c.Value
	}
	if d < 0 {
		return 0
	}
	if d > price {
		return price
	}
	return d
}
