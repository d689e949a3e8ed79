package model

import "time"

// Progress is a per-(user, course, lesson) completion record.
type Progress struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	UserID        uint       `gorm:"not null;uniqueIndex:idx_progress_user_course_lesson;index:idx_progress_user_course" json:"user_id"`
	CourseID      uint       `gorm:"not null;uniqueIndex:idx_progress_user_course_lesson;index:idx_progress_user_course" json:"course_id"`
	LessonID      uint       `gorm:"not null;uniqueIndex:idx_progress_user_course_lesson" json:"lesson_id"`
	Percentage    int        `gorm:"not null;default:0" json:"percentage"`
	IsCompleted   bool       `gorm:"not null;default:false" json:"is_completed"`
	LastWatchedAt *time.Time `json:"last_watched_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"` // first transition to complete only

	// Relationships
	Lesson *Lesson `gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Progress
func (Progress) TableName() string {
	return "user_progress"
}
