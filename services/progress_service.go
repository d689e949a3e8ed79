package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService tracks per-lesson completion for enrolled users.
type ProgressService struct {
	db      *gorm.DB
	catalog *CatalogService
	log     *logger.Logger
	now     func() time.Time
}

func NewProgressService(db *gorm.DB, catalog *CatalogService, log *logger.Logger) *ProgressService {
	return &ProgressService{db: db, catalog: catalog, log: orNop(log), now: time.Now}
}

// UpdateProgressInput is one progress report for a lesson.
type UpdateProgressInput struct {
	UserID      uint
	CourseID    uint
	LessonID    uint
	Percentage  int
	IsCompleted bool
}

// UpdateProgress upserts the (user, course, lesson) progress row. completed_at
// is stamped on the first transition to complete and never cleared.
func (s *ProgressService) UpdateProgress(ctx context.Context, in UpdateProgressInput) (*model.Progress, error) {
	if in.Percentage < 0 || in.Percentage > 100 {
		return nil, apierr.Validation(apierr.FieldError{Field: "percentage", Message: "percentage must be between 0 and 100"})
	}

	lesson, err := s.catalog.GetLesson(ctx, in.LessonID)
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != in.CourseID {
		return nil, ErrLessonNotInCourse
	}

	enrolled, err := isEnrolled(ctx, s.db, in.UserID, in.CourseID)
	if err != nil {
		return nil, storageError(s.log, "check enrollment", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	var row model.Progress
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		row, err = s.upsert(tx, in.UserID, in.CourseID, in.LessonID, in.Percentage, in.IsCompleted || in.Percentage == 100)
		return err
	})
	if err != nil {
		return nil, storageError(s.log, "update progress", err)
	}
	return &row, nil
}

// upsert writes one progress row inside tx.
func (s *ProgressService) upsert(tx *gorm.DB, userID, courseID, lessonID uint, percentage int, completed bool) (model.Progress, error) {
	now := s.now()

	var row model.Progress
	err := tx.Where("user_id = ? AND course_id = ? AND lesson_id = ?", userID, courseID, lessonID).
		First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = model.Progress{
			UserID:        userID,
			CourseID:      courseID,
			LessonID:      lessonID,
			Percentage:    percentage,
			IsCompleted:   completed,
			LastWatchedAt: &now,
		}
		if completed {
			row.CompletedAt = &now
		}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}, {Name: "lesson_id"}},
			DoNothing: true,
		}).Create(&row)
		if result.Error != nil || result.RowsAffected == 1 {
			return row, result.Error
		}
		// a concurrent writer inserted the row first
		return s.upsert(tx, userID, courseID, lessonID, percentage, completed)
	case err != nil:
		return row, err
	}

	updates := map[string]interface{}{
		"percentage":      percentage,
		"is_completed":    completed,
		"last_watched_at": now,
	}
	row.Percentage = percentage
	row.IsCompleted = completed
	row.LastWatchedAt = &now
	if completed && row.CompletedAt == nil {
		updates["completed_at"] = now
		row.CompletedAt = &now
	}

	return row, tx.Model(&model.Progress{}).Where("id = ?", row.ID).Updates(updates).Error
}

// CompleteCourse marks every lesson of a course complete for an enrolled user.
func (s *ProgressService) CompleteCourse(ctx context.Context, userID, courseID uint) (*CourseProgress, error) {
	lessons, err := s.catalog.ListLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := isEnrolled(ctx, s.db, userID, courseID)
	if err != nil {
		return nil, storageError(s.log, "check enrollment", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, lesson := range lessons {
			if _, err := s.upsert(tx, userID, courseID, lesson.ID, 100, true); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError(s.log, "complete course", err)
	}

	s.log.Info("course marked completed", "user_id", userID, "course_id", courseID, "lessons", len(lessons))
	return s.GetCourseProgress(ctx, userID, courseID)
}

// LessonProgress is one lesson's line in a course progress report.
type LessonProgress struct {
	LessonID      uint       `json:"lesson_id"`
	Title         string     `json:"title"`
	Position      int        `json:"position"`
	Percentage    int        `json:"percentage"`
	IsCompleted   bool       `json:"is_completed"`
	LastWatchedAt *time.Time `json:"last_watched_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// CourseProgress summarizes a user's progress through a course.
type CourseProgress struct {
	CourseID         uint             `json:"course_id"`
	TotalLessons     int              `json:"total_lessons"`
	CompletedLessons int              `json:"completed_lessons"`
	AvgProgress      float64          `json:"avg_progress"`
	CompletionRate   float64          `json:"completion_rate"`
	LastActivity     *time.Time       `json:"last_activity,omitempty"`
	Lessons          []LessonProgress `json:"lessons"`
}

// GetCourseProgress joins every lesson of the course against the user's
// progress rows. Lessons without a row count as 0%.
func (s *ProgressService) GetCourseProgress(ctx context.Context, userID, courseID uint) (*CourseProgress, error) {
	lessons, err := s.catalog.ListLessons(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var rows []model.Progress
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Find(&rows).Error; err != nil {
		return nil, storageError(s.log, "load progress", err)
	}
	byLesson := make(map[uint]model.Progress, len(rows))
	for _, r := range rows {
		byLesson[r.LessonID] = r
	}

	report := &CourseProgress{
		CourseID:     courseID,
		TotalLessons: len(lessons),
		Lessons:      make([]LessonProgress, 0, len(lessons)),
	}

	sum := 0
	for _, lesson := range lessons {
		line := LessonProgress{LessonID: lesson.ID, Title: lesson.Title, Position: lesson.Position}
		if r, ok := byLesson[lesson.ID]; ok {
			line.Percentage = r.Percentage
			line.IsCompleted = r.IsCompleted
			line.LastWatchedAt = r.LastWatchedAt
			line.CompletedAt = r.CompletedAt
			if r.IsCompleted {
				report.CompletedLessons++
			}
			if r.LastWatchedAt != nil && (report.LastActivity == nil || r.LastWatchedAt.After(*report.LastActivity)) {
				report.LastActivity = r.LastWatchedAt
			}
		}
		sum += line.Percentage
		report.Lessons = append(report.Lessons, line)
	}

	if report.TotalLessons > 0 {
		report.AvgProgress = round2(float64(sum) / float64(report.TotalLessons))
		report.CompletionRate = round2(float64(report.CompletedLessons) * 100 / float64(report.TotalLessons))
	}
	return report, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
