package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles understood by the role gate.
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// Account statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Username     string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Bio          string         `gorm:"type:text" json:"bio,omitempty"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"`   // student, instructor, admin
	Status       string         `gorm:"type:varchar(20);default:'active'" json:"status"` // active, inactive
	TokenVersion int            `gorm:"default:0" json:"-"`                              // Increment to invalidate all user tokens

	// Relationships
	Enrollments    []Enrollment        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Sessions       []UserSession       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == UserStatusActive
}
