package model

import "time"

// UserSession tracks one login; access and refresh tokens carry its ID.
type UserSession struct {
	ID         string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	RefreshJTI string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"-"`
	IPAddress  string     `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent  string     `gorm:"type:text" json:"user_agent"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}

// IsActive reports whether the session can still mint tokens.
func (s *UserSession) IsActive(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
