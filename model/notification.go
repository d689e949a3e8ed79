package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationType represents the type/severity of notification
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeSuccess NotificationType = "success"
	NotificationTypeWarning NotificationType = "warning"
	NotificationTypeError   NotificationType = "error"
)

// NotificationCategory represents the category of notification
type NotificationCategory string

const (
	NotificationCategoryEnrollment NotificationCategory = "enrollment"
	NotificationCategoryPayment    NotificationCategory = "payment"
	NotificationCategoryCourse     NotificationCategory = "course"
	NotificationCategoryGeneral    NotificationCategory = "general"
)

// UserNotification represents a notification for a user
type UserNotification struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
	DeletedAt gorm.DeletedAt       `gorm:"index" json:"-"`
	UserID    uint                 `gorm:"index;not null" json:"user_id"`
	Type      NotificationType     `gorm:"type:varchar(20);not null" json:"type"`
	Category  NotificationCategory `gorm:"type:varchar(30);not null" json:"category"`
	Title     string               `gorm:"type:varchar(255);not null" json:"title"`
	Message   string               `gorm:"type:text" json:"message"`
	Read      bool                 `gorm:"not null;default:false" json:"read"`
	Metadata  datatypes.JSON       `json:"metadata,omitempty"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// NotificationMetadata links a notification back to the records it talks about
type NotificationMetadata struct {
	CourseID     uint   `json:"course_id,omitempty"`
	CourseTitle  string `json:"course_title,omitempty"`
	EnrollmentID uint   `json:"enrollment_id,omitempty"`
	PaymentID    uint   `json:"payment_id,omitempty"`
	Status       string `json:"status,omitempty"`
}
