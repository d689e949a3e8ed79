package services

import (
	"errors"
	"testing"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
)

func TestUpdateProgressPercentageBounds(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 1)
	f.enroll(t, student.ID, course.ID)
	lessonID := course.Lessons[0].ID

	for _, pct := range []int{150, -5} {
		_, err := f.progress.UpdateProgress(f.ctx, UpdateProgressInput{
			UserID: student.ID, CourseID: course.ID, LessonID: lessonID, Percentage: pct,
		})
		apiErr, ok := apierr.As(err)
		if !ok || apiErr.Code != "VALIDATION_ERROR" {
			t.Fatalf("percentage %d: error = %v, want validation error", pct, err)
		}
		if len(apiErr.Fields) != 1 || apiErr.Fields[0].Field != "percentage" {
			t.Fatalf("percentage %d: fields = %+v", pct, apiErr.Fields)
		}
	}

	for _, pct := range []int{0, 100} {
		if _, err := f.progress.UpdateProgress(f.ctx, UpdateProgressInput{
			UserID: student.ID, CourseID: course.ID, LessonID: lessonID, Percentage: pct,
		}); err != nil {
			t.Fatalf("percentage %d rejected: %v", pct, err)
		}
	}
}

func TestCompletedAtIsStampedOnce(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 1)
	f.enroll(t, student.ID, course.ID)
	lessonID := course.Lessons[0].ID

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)
	in := UpdateProgressInput{UserID: student.ID, CourseID: course.ID, LessonID: lessonID, Percentage: 40}

	f.progress.now = func() time.Time { return first.Add(-time.Hour) }
	if _, err := f.progress.UpdateProgress(f.ctx, in); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	load := func() model.Progress {
		var p model.Progress
		if err := f.db.Where("user_id = ? AND lesson_id = ?", student.ID, lessonID).First(&p).Error; err != nil {
			t.Fatalf("load progress: %v", err)
		}
		return p
	}
	if p := load(); p.CompletedAt != nil || p.IsCompleted {
		t.Fatalf("incomplete row has completion: %+v", p)
	}

	in.Percentage, in.IsCompleted = 100, true
	f.progress.now = func() time.Time { return first }
	if _, err := f.progress.UpdateProgress(f.ctx, in); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	p := load()
	if p.CompletedAt == nil || !p.CompletedAt.Equal(first) {
		t.Fatalf("CompletedAt = %v, want %v", p.CompletedAt, first)
	}

	f.progress.now = func() time.Time { return later }
	if _, err := f.progress.UpdateProgress(f.ctx, in); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	p = load()
	if !p.CompletedAt.Equal(first) {
		t.Fatalf("CompletedAt moved to %v", p.CompletedAt)
	}
	if p.LastWatchedAt == nil || !p.LastWatchedAt.Equal(later) {
		t.Fatalf("LastWatchedAt = %v, want %v", p.LastWatchedAt, later)
	}

	// falling back to incomplete keeps the original stamp
	in.Percentage, in.IsCompleted = 50, false
	if _, err := f.progress.UpdateProgress(f.ctx, in); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if p = load(); p.IsCompleted || p.CompletedAt == nil || !p.CompletedAt.Equal(first) {
		t.Fatalf("after reset: %+v", p)
	}

	if n := f.count(t, &model.Progress{}, "user_id = ?", student.ID); n != 1 {
		t.Fatalf("progress rows = %d, want 1", n)
	}
}

func TestUpdateProgressChecks(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	stranger := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 1)
	otherCourse := f.course(t, instructor.ID, 1000, 1)
	f.enroll(t, student.ID, course.ID)

	tests := []struct {
		name string
		in   UpdateProgressInput
		want error
	}{
		{"missing lesson", UpdateProgressInput{UserID: student.ID, CourseID: course.ID, LessonID: 9999}, ErrLessonNotFound},
		{"lesson of another course", UpdateProgressInput{UserID: student.ID, CourseID: course.ID, LessonID: otherCourse.Lessons[0].ID}, ErrLessonNotInCourse},
		{"not enrolled", UpdateProgressInput{UserID: stranger.ID, CourseID: course.ID, LessonID: course.Lessons[0].ID}, ErrNotEnrolled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.progress.UpdateProgress(f.ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("UpdateProgress error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCourseProgressCompletionRate(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 5)
	f.enroll(t, student.ID, course.ID)

	updates := []struct {
		lesson   int
		pct      int
		complete bool
	}{
		{0, 100, true},
		{1, 100, true},
		{2, 50, false},
	}
	for _, u := range updates {
		if _, err := f.progress.UpdateProgress(f.ctx, UpdateProgressInput{
			UserID:      student.ID,
			CourseID:    course.ID,
			LessonID:    course.Lessons[u.lesson].ID,
			Percentage:  u.pct,
			IsCompleted: u.complete,
		}); err != nil {
			t.Fatalf("UpdateProgress: %v", err)
		}
	}

	report, err := f.progress.GetCourseProgress(f.ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("GetCourseProgress: %v", err)
	}
	if report.TotalLessons != 5 || report.CompletedLessons != 2 {
		t.Fatalf("lessons = %d/%d", report.CompletedLessons, report.TotalLessons)
	}
	if report.CompletionRate != 40.0 {
		t.Fatalf("CompletionRate = %v, want 40", report.CompletionRate)
	}
	if report.AvgProgress != 50.0 {
		t.Fatalf("AvgProgress = %v, want 50", report.AvgProgress)
	}
	if report.LastActivity == nil || len(report.Lessons) != 5 {
		t.Fatalf("report = %+v", report)
	}
	if report.Lessons[4].Percentage != 0 || report.Lessons[4].IsCompleted {
		t.Fatalf("untouched lesson = %+v", report.Lessons[4])
	}
}

func TestCourseProgressWithoutLessons(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 0)

	report, err := f.progress.GetCourseProgress(f.ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("GetCourseProgress: %v", err)
	}
	if report.TotalLessons != 0 || report.CompletionRate != 0 || report.Lessons == nil {
		t.Fatalf("report = %+v", report)
	}

	if _, err := f.progress.GetCourseProgress(f.ctx, student.ID, 9999); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("missing course error = %v", err)
	}
}

func TestRound2(t *testing.T) {
	if got := round2(100.0 / 3.0); got != 33.33 {
		t.Fatalf("round2 = %v", got)
	}
	if got := round2(200.0 / 3.0); got != 66.67 {
		t.Fatalf("round2 = %v", got)
	}
}
