package model

import (
	"time"

	"gorm.io/datatypes"
)

// ContentKind distinguishes site furniture blocks.
type ContentKind string

const (
	ContentKindBanner ContentKind = "banner"
	ContentKindMenu   ContentKind = "menu"
	ContentKindWidget ContentKind = "widget"
)

func (k ContentKind) Valid() bool {
	return k == ContentKindBanner || k == ContentKindMenu || k == ContentKindWidget
}

// ContentBlock is an admin-managed banner, menu entry or widget shown by the frontend.
type ContentBlock struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Kind      ContentKind    `gorm:"type:varchar(20);not null;index" json:"kind"`
	Title     string         `gorm:"not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body,omitempty"`
	LinkURL   string         `gorm:"type:text" json:"link_url,omitempty"`
	ImageURL  string         `gorm:"type:text" json:"image_url,omitempty"`
	Position  int            `gorm:"not null;default:0" json:"position"`
	IsActive  bool           `gorm:"not null" json:"is_active"`
	Settings  datatypes.JSON `json:"settings,omitempty"`
}
