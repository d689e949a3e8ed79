package services

import (
	"context"
	"io"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services/storage"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
)

// MediaStore is the object storage used for lesson media.
type MediaStore interface {
	Upload(ctx context.Context, key string, data io.ReadSeeker, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(key string, expiration time.Duration) (string, error)
}

// MediaURL is a time-limited link to a lesson's media object.
type MediaURL struct {
	LessonID  uint      `json:"lesson_id"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MediaService hands out presigned URLs for lesson media and accepts uploads.
type MediaService struct {
	db      *gorm.DB
	catalog *CatalogService
	store   MediaStore
	ttl     time.Duration
	log     *logger.Logger
}

// NewMediaService creates a media service. store may be nil when no bucket is configured.
func NewMediaService(db *gorm.DB, catalog *CatalogService, store MediaStore, ttl time.Duration, log *logger.Logger) *MediaService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &MediaService{db: db, catalog: catalog, store: store, ttl: ttl, log: orNop(log)}
}

// canAccessCourse reports whether actor may read the paid content of a course:
// its instructor, an admin or an enrolled user.
func canAccessCourse(ctx context.Context, db *gorm.DB, actor Actor, course *model.Course) (bool, error) {
	if actor.CanManage(course.InstructorID) {
		return true, nil
	}
	if actor.UserID == 0 {
		return false, nil
	}
	return isEnrolled(ctx, db, actor.UserID, course.ID)
}

// LessonMediaURL presigns the lesson's media object. Preview lessons are open to
// every caller, the rest need course access.
func (s *MediaService) LessonMediaURL(ctx context.Context, actor Actor, lessonID uint) (*MediaURL, error) {
	lesson, err := s.catalog.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	if !lesson.IsPreview {
		if err := s.catalog.CheckCourseAccess(ctx, actor, lesson.CourseID); err != nil {
			return nil, err
		}
	}

	if lesson.VideoKey == "" {
		return nil, ErrMediaUnavailable
	}
	if s.store == nil {
		return nil, ErrStorageDisabled
	}

	url, err := s.store.PresignGet(lesson.VideoKey, s.ttl)
	if err != nil {
		return nil, storageError(s.log, "presign lesson media", err)
	}
	return &MediaURL{LessonID: lesson.ID, URL: url, ExpiresAt: time.Now().Add(s.ttl)}, nil
}

// UploadLessonMedia stores a new media object for a lesson the actor manages and
// points the lesson at it. The previous object is removed best effort.
func (s *MediaService) UploadLessonMedia(ctx context.Context, actor Actor, lessonID uint, filename string, data io.ReadSeeker) (*model.Lesson, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	lesson, err := s.catalog.manageableLesson(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}

	key := storage.LessonMediaKey(lesson.CourseID, lesson.ID, filename)
	if err := s.store.Upload(ctx, key, data, storage.ContentType(filename)); err != nil {
		return nil, storageError(s.log, "upload lesson media", err)
	}

	previous := lesson.VideoKey
	if err := s.db.WithContext(ctx).Model(lesson).Update("video_key", key).Error; err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to remove orphaned media object", "key", key, "error", delErr)
		}
		return nil, storageError(s.log, "set lesson media", err)
	}
	s.catalog.invalidate(ctx, lesson.CourseID)

	if previous != "" {
		if err := s.store.Delete(ctx, previous); err != nil {
			s.log.Warn("failed to remove previous media object", "key", previous, "error", err)
		}
	}

	s.log.Info("lesson media uploaded", "lesson_id", lesson.ID, "key", key)
	return s.catalog.GetLesson(ctx, lessonID)
}
