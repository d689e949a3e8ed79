package services

import (
	"context"
	"errors"
	"math"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"github.com/sahilchouksey/learnhub-api/utils/validation"
	"gorm.io/gorm"
)

// ReviewService stores course ratings from enrolled students.
type ReviewService struct {
	db      *gorm.DB
	catalog *CatalogService
	log     *logger.Logger
}

func NewReviewService(db *gorm.DB, catalog *CatalogService, log *logger.Logger) *ReviewService {
	return &ReviewService{db: db, catalog: catalog, log: orNop(log)}
}

// ReviewInput is the body of a new review.
type ReviewInput struct {
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
	Body   string `json:"body" validate:"omitempty,max=5000"`
}

// ReviewPatch is a partial review update. Nil fields are left unchanged.
type ReviewPatch struct {
	Rating *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Body   *string `json:"body" validate:"omitempty,max=5000"`
}

func (p ReviewPatch) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if p.Rating != nil {
		u["rating"] = *p.Rating
	}
	if p.Body != nil {
		u["body"] = validation.StripHTML(*p.Body)
	}
	return u
}

// ReviewPage is one page of a course's reviews plus the course-wide average.
type ReviewPage struct {
	Reviews       []model.Review `json:"reviews"`
	Total         int64          `json:"total"`
	AverageRating float64        `json:"average_rating"`
}

var errRating = apierr.Validation(apierr.FieldError{Field: "rating", Message: "rating must be between 1 and 5"})

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

// CreateReview records actor's review of a course they are enrolled in.
func (s *ReviewService) CreateReview(ctx context.Context, actor Actor, courseID uint, in ReviewInput) (*model.Review, error) {
	if !validRating(in.Rating) {
		return nil, errRating
	}
	if _, err := s.catalog.loadCourse(ctx, courseID); err != nil {
		return nil, err
	}

	enrolled, err := isEnrolled(ctx, s.db, actor.UserID, courseID)
	if err != nil {
		return nil, storageError(s.log, "check enrollment", err)
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	review := model.Review{
		UserID:   actor.UserID,
		CourseID: courseID,
		Rating:   in.Rating,
		Body:     validation.StripHTML(in.Body),
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrAlreadyReviewed
		}
		return nil, storageError(s.log, "create review", err)
	}
	return &review, nil
}

// UpdateReview lets the author change their review.
func (s *ReviewService) UpdateReview(ctx context.Context, actor Actor, reviewID uint, patch ReviewPatch) (*model.Review, error) {
	if patch.Rating != nil && !validRating(*patch.Rating) {
		return nil, errRating
	}
	review, err := s.get(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != actor.UserID {
		return nil, ErrForbidden
	}

	if updates := patch.updates(); len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(review).Updates(updates).Error; err != nil {
			return nil, storageError(s.log, "update review", err)
		}
	}
	return s.get(ctx, reviewID)
}

// DeleteReview removes a review. Authors and admins only.
func (s *ReviewService) DeleteReview(ctx context.Context, actor Actor, reviewID uint) error {
	review, err := s.get(ctx, reviewID)
	if err != nil {
		return err
	}
	if !actor.CanManage(review.UserID) {
		return ErrForbidden
	}
	if err := s.db.WithContext(ctx).Delete(review).Error; err != nil {
		return storageError(s.log, "delete review", err)
	}
	return nil
}

// ListReviews pages through a course's reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, courseID uint, page Page) (*ReviewPage, error) {
	if _, err := s.catalog.loadCourse(ctx, courseID); err != nil {
		return nil, err
	}
	page = page.Normalize()

	var stats struct {
		Total   int64
		Average *float64
	}
	err := s.db.WithContext(ctx).Model(&model.Review{}).
		Select("COUNT(*) AS total, AVG(rating) AS average").
		Where("course_id = ?", courseID).
		Scan(&stats).Error
	if err != nil {
		return nil, storageError(s.log, "review stats", err)
	}

	result := &ReviewPage{Reviews: []model.Review{}, Total: stats.Total}
	if stats.Average != nil {
		result.AverageRating = math.Round(*stats.Average*100) / 100
	}

	err = s.db.WithContext(ctx).
		Preload("User").
		Where("course_id = ?", courseID).
		Order("created_at DESC, id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&result.Reviews).Error
	if err != nil {
		return nil, storageError(s.log, "list reviews", err)
	}
	return result, nil
}

func (s *ReviewService) get(ctx context.Context, reviewID uint) (*model.Review, error) {
	var review model.Review
	if err := s.db.WithContext(ctx).First(&review, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, storageError(s.log, "get review", err)
	}
	return &review, nil
}
