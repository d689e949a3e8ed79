package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
	"gorm.io/gorm"
)

// CommentService runs lesson discussions.
type CommentService struct {
	db      *gorm.DB
	catalog *CatalogService
	log     *logger.Logger
}

func NewCommentService(db *gorm.DB, catalog *CatalogService, log *logger.Logger) *CommentService {
	return &CommentService{db: db, catalog: catalog, log: orNop(log)}
}

// CommentInput is the body of a new comment or reply.
type CommentInput struct {
	Body     string `json:"body" validate:"required,max=5000"`
	ParentID *uint  `json:"parent_id"`
}

var (
	errEmptyComment  = apierr.Validation(apierr.FieldError{Field: "body", Message: "body must contain text"})
	errForeignParent = apierr.Validation(apierr.FieldError{Field: "parent_id", Message: "parent comment belongs to another lesson"})
)

// lessonAccess loads a lesson and its course and checks that actor may take
// part in its discussion. Preview lessons are readable by everyone when
// readOnly is set.
func (s *CommentService) lessonAccess(ctx context.Context, actor Actor, lessonID uint, readOnly bool) (*model.Lesson, *model.Course, error) {
	lesson, err := s.catalog.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.catalog.loadCourse(ctx, lesson.CourseID)
	if err != nil {
		return nil, nil, err
	}
	if readOnly && lesson.IsPreview {
		return lesson, course, nil
	}

	ok, err := canAccessCourse(ctx, s.db, actor, course)
	if err != nil {
		return nil, nil, storageError(s.log, "check course access", err)
	}
	if !ok {
		return nil, nil, ErrNotEnrolled
	}
	return lesson, course, nil
}

// CreateComment posts a comment, or a reply when ParentID is set.
func (s *CommentService) CreateComment(ctx context.Context, actor Actor, lessonID uint, in CommentInput) (*model.Comment, error) {
	body := strings.TrimSpace(validation.StripHTML(in.Body))
	if body == "" {
		return nil, errEmptyComment
	}
	if _, _, err := s.lessonAccess(ctx, actor, lessonID, false); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.get(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		if parent.LessonID != lessonID {
			return nil, errForeignParent
		}
	}

	comment := model.Comment{
		LessonID: lessonID,
		UserID:   actor.UserID,
		ParentID: in.ParentID,
		Body:     body,
	}
	if err := s.db.WithContext(ctx).Create(&comment).Error; err != nil {
		return nil, storageError(s.log, "create comment", err)
	}
	return &comment, nil
}

// ListComments pages through a lesson's comments, oldest first.
func (s *CommentService) ListComments(ctx context.Context, actor Actor, lessonID uint, page Page) ([]model.Comment, int64, error) {
	if _, _, err := s.lessonAccess(ctx, actor, lessonID, true); err != nil {
		return nil, 0, err
	}
	page = page.Normalize()

	q := s.db.WithContext(ctx).Model(&model.Comment{}).Where("lesson_id = ?", lessonID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, storageError(s.log, "count comments", err)
	}

	comments := []model.Comment{}
	err := q.Preload("User").
		Order("created_at ASC, id ASC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&comments).Error
	if err != nil {
		return nil, 0, storageError(s.log, "list comments", err)
	}
	return comments, total, nil
}

// UpdateComment replaces the body of the actor's own comment.
func (s *CommentService) UpdateComment(ctx context.Context, actor Actor, commentID uint, body string) (*model.Comment, error) {
	body = strings.TrimSpace(validation.StripHTML(body))
	if body == "" {
		return nil, errEmptyComment
	}
	comment, err := s.get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != actor.UserID {
		return nil, ErrForbidden
	}

	if err := s.db.WithContext(ctx).Model(comment).Update("body", body).Error; err != nil {
		return nil, storageError(s.log, "update comment", err)
	}
	return s.get(ctx, commentID)
}

// DeleteComment removes a comment and its replies. The author, the course
// instructor and admins may delete.
func (s *CommentService) DeleteComment(ctx context.Context, actor Actor, commentID uint) error {
	comment, err := s.get(ctx, commentID)
	if err != nil {
		return err
	}

	if !actor.CanManage(comment.UserID) {
		lesson, err := s.catalog.GetLesson(ctx, comment.LessonID)
		if err != nil {
			return err
		}
		course, err := s.catalog.loadCourse(ctx, lesson.CourseID)
		if err != nil {
			return err
		}
		if course.InstructorID != actor.UserID {
			return ErrForbidden
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(comment).Error
	})
	if err != nil {
		return storageError(s.log, "delete comment", err)
	}
	return nil
}

func (s *CommentService) get(ctx context.Context, commentID uint) (*model.Comment, error) {
	var comment model.Comment
	if err := s.db.WithContext(ctx).First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, storageError(s.log, "get comment", err)
	}
	return &comment, nil
}
