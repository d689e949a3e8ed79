package model

import "time"

// Enrollment is the ledger entry granting a user access to a course.
// At most one row exists per (user_id, course_id); the unique index enforces it.
type Enrollment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course" json:"user_id"`
	CourseID       uint      `gorm:"not null;uniqueIndex:idx_enrollment_user_course;index" json:"course_id"`
	OriginalPrice  int64     `gorm:"not null" json:"original_price"`
	DiscountAmount int64     `gorm:"not null;default:0" json:"discount_amount"`
	TotalAmount    int64     `gorm:"not null" json:"total_amount"`
	Currency       string    `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	CouponID       *uint     `gorm:"index" json:"coupon_id,omitempty"`

	// Relationships
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Course   *Course   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Coupon   *Coupon   `gorm:"foreignKey:CouponID;constraint:OnDelete:SET NULL" json:"coupon,omitempty"`
	Payments []Payment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
}

// TableName specifies the table name for Enrollment
func (Enrollment) TableName() string {
	return "enrollments"
}
