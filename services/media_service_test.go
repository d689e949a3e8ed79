package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
)

type memoryStore struct {
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (m *memoryStore) Upload(_ context.Context, key string, data io.ReadSeeker, _ string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[key] = b
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryStore) PresignGet(key string, expiration time.Duration) (string, error) {
	return "https://media.example.com/" + key + "?expires=" + expiration.String(), nil
}

func TestLessonMediaURLAccess(t *testing.T) {
	f := newLenientFixture(t)
	media := NewMediaService(f.db, f.catalog, newMemoryStore(), time.Minute, nil)

	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	outsider := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 0, 2)
	paid, preview := course.Lessons[0], course.Lessons[1]

	f.db.Model(&paid).Update("video_key", "courses/paid.mp4")
	f.db.Model(&preview).Updates(map[string]interface{}{"video_key": "courses/preview.mp4", "is_preview": true})
	f.enroll(t, student.ID, course.ID)

	tests := []struct {
		name    string
		actor   Actor
		lesson  uint
		wantErr error
	}{
		{"enrolled student", Actor{UserID: student.ID, Role: model.RoleStudent}, paid.ID, nil},
		{"instructor", Actor{UserID: instructor.ID, Role: model.RoleInstructor}, paid.ID, nil},
		{"admin", Actor{UserID: 999, Role: model.RoleAdmin}, paid.ID, nil},
		{"outsider", Actor{UserID: outsider.ID, Role: model.RoleStudent}, paid.ID, ErrNotEnrolled},
		{"anonymous", Actor{}, paid.ID, ErrNotEnrolled},
		{"anonymous preview", Actor{}, preview.ID, nil},
		{"missing lesson", Actor{UserID: student.ID}, 424242, ErrLessonNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := media.LessonMediaURL(f.ctx, tt.actor, tt.lesson)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("LessonMediaURL error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && !strings.HasPrefix(got.URL, "https://media.example.com/courses/") {
				t.Fatalf("url = %q", got.URL)
			}
		})
	}
}

func TestLessonMediaURLWithoutMedia(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	course := f.course(t, instructor.ID, 0, 1)
	actor := Actor{UserID: instructor.ID, Role: model.RoleInstructor}

	media := NewMediaService(f.db, f.catalog, newMemoryStore(), time.Minute, nil)
	if _, err := media.LessonMediaURL(f.ctx, actor, course.Lessons[0].ID); !errors.Is(err, ErrMediaUnavailable) {
		t.Fatalf("error = %v, want ErrMediaUnavailable", err)
	}

	f.db.Model(&course.Lessons[0]).Update("video_key", "k.mp4")
	disabled := NewMediaService(f.db, f.catalog, nil, time.Minute, nil)
	if _, err := disabled.LessonMediaURL(f.ctx, actor, course.Lessons[0].ID); !errors.Is(err, ErrStorageDisabled) {
		t.Fatalf("error = %v, want ErrStorageDisabled", err)
	}
}

func TestUploadLessonMediaReplacesObject(t *testing.T) {
	f := newLenientFixture(t)
	store := newMemoryStore()
	media := NewMediaService(f.db, f.catalog, store, time.Minute, nil)

	instructor := f.user(t, model.RoleInstructor)
	course := f.course(t, instructor.ID, 0, 1)
	lessonID := course.Lessons[0].ID
	owner := Actor{UserID: instructor.ID, Role: model.RoleInstructor}

	first, err := media.UploadLessonMedia(f.ctx, owner, lessonID, "intro.mp4", bytes.NewReader([]byte("v1")))
	if err != nil {
		t.Fatalf("UploadLessonMedia: %v", err)
	}
	second, err := media.UploadLessonMedia(f.ctx, owner, lessonID, "intro.webm", bytes.NewReader([]byte("v2")))
	if err != nil {
		t.Fatalf("UploadLessonMedia: %v", err)
	}

	if first.VideoKey == second.VideoKey {
		t.Fatalf("expected a new key on re-upload")
	}
	if _, ok := store.objects[first.VideoKey]; ok {
		t.Fatalf("previous object %q was not deleted", first.VideoKey)
	}
	if string(store.objects[second.VideoKey]) != "v2" {
		t.Fatalf("stored object = %q", store.objects[second.VideoKey])
	}

	other := f.user(t, model.RoleInstructor)
	_, err = media.UploadLessonMedia(f.ctx, Actor{UserID: other.ID, Role: model.RoleInstructor}, lessonID, "x.mp4", bytes.NewReader(nil))
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign instructor error = %v, want ErrForbidden", err)
	}
}
