package model

import (
	"time"

	"gorm.io/gorm"
)

// Category groups courses in the catalog
type Category struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Name        string         `gorm:"not null" json:"name"`
	Slug        string         `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
}

// Course is a sellable unit owned by an instructor. Prices are in minor currency units.
type Course struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	InstructorID uint           `gorm:"not null;index" json:"instructor_id"`
	CategoryID   *uint          `gorm:"index" json:"category_id,omitempty"`
	Title        string         `gorm:"not null" json:"title"`
	Slug         string         `gorm:"type:varchar(160);uniqueIndex;not null" json:"slug"`
	Description  string         `gorm:"type:text" json:"description"`
	Level        string         `gorm:"type:varchar(20)" json:"level"` // beginner, intermediate, advanced
	Price        int64          `gorm:"not null;default:0" json:"price"`
	SalePrice    *int64         `json:"sale_price,omitempty"`
	Currency     string         `gorm:"type:varchar(10);default:'INR'" json:"currency"`
	ThumbnailURL string         `gorm:"type:text" json:"thumbnail_url,omitempty"`
	IsPublished  bool           `gorm:"not null;default:false" json:"is_published"`

	// Relationships
	Instructor *User     `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	Category   *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"category,omitempty"`
	Lessons    []Lesson  `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons,omitempty"`
}

// EffectivePrice is the price an enrollment is charged before coupons.
func (c *Course) EffectivePrice() int64 {
	if c.SalePrice != nil && *c.SalePrice < c.Price {
		return *c.SalePrice
	}
	return c.Price
}

// Lesson is an ordered unit of content inside a course
type Lesson struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID        uint           `gorm:"not null;index" json:"course_id"`
	Title           string         `gorm:"not null" json:"title"`
	Content         string         `gorm:"type:text" json:"content,omitempty"`
	VideoKey        string         `gorm:"type:text" json:"-"` // object storage key, served via presigned URL
	DurationSeconds int            `gorm:"default:0" json:"duration_seconds"`
	Position        int            `gorm:"not null;default:0" json:"position"`
	IsPreview       bool           `gorm:"not null;default:false" json:"is_preview"`
}
