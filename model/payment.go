package model

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentStatus is set externally (webhook or admin); any status may follow any other.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Valid reports whether s is a known status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// Payment records money movement for an enrollment
type Payment struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	EnrollmentID  uint           `gorm:"not null;index" json:"enrollment_id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	CourseID      uint           `gorm:"not null;index" json:"course_id"`
	Amount        int64          `gorm:"not null" json:"amount"`
	Currency      string         `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	Method        string         `gorm:"type:varchar(50);not null" json:"method"`
	Status        PaymentStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TransactionID *string        `gorm:"type:varchar(100);uniqueIndex" json:"transaction_id,omitempty"`
	PaidAt        *time.Time     `json:"paid_at,omitempty"`
	Metadata      datatypes.JSON `json:"metadata,omitempty"`

	// Relationships
	Enrollment *Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Payment
func (Payment) TableName() string {
	return "payments"
}
