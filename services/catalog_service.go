package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
)

// CatalogService owns categories, courses and lessons.
type CatalogService struct {
	db    *gorm.DB
	cache CourseCache
	log   *logger.Logger
}

// NewCatalogService creates a catalog service. cache may be nil.
func NewCatalogService(db *gorm.DB, cache CourseCache, log *logger.Logger) *CatalogService {
	return &CatalogService{db: db, cache: cache, log: orNop(log)}
}

// lessonOutline is the column set shown in course listings; lesson bodies are
// served by GetLesson only.
func lessonOutline(db *gorm.DB) *gorm.DB {
	return db.Select("id", "created_at", "updated_at", "course_id", "title", "duration_seconds", "position", "is_preview").
		Order("position ASC, id ASC")
}

// GetCourse is a point-in-time read of a course with its category and lesson outline.
func (s *CatalogService) GetCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	if s.cache != nil {
		if course, ok := s.cache.Get(ctx, courseID); ok {
			return course, nil
		}
	}

	var course model.Course
	err := s.db.WithContext(ctx).
		Preload("Category").
		Preload("Lessons", lessonOutline).
		First(&course, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, storageError(s.log, "get course", err)
	}

	if s.cache != nil {
		s.cache.Set(ctx, &course)
	}
	return &course, nil
}

// CourseFilter narrows ListCourses.
type CourseFilter struct {
	CategoryID   uint
	InstructorID uint
	Search       string
	Published    *bool
	Page         Page
}

// ListCourses returns one page of courses, newest first, and the total match count.
func (s *CatalogService) ListCourses(ctx context.Context, f CourseFilter) ([]model.Course, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Course{})

	if f.CategoryID != 0 {
		query = query.Where("category_id = ?", f.CategoryID)
	}
	if f.InstructorID != 0 {
		query = query.Where("instructor_id = ?", f.InstructorID)
	}
	if f.Published != nil {
		query = query.Where("is_published = ?", *f.Published)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError(s.log, "count courses", err)
	}

	page := f.Page.Normalize()
	var courses []model.Course
	err := query.Preload("Category").
		Order("created_at DESC, id DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&courses).Error
	if err != nil {
		return nil, 0, storageError(s.log, "list courses", err)
	}

	return courses, total, nil
}

// CreateCourseInput is the body of a new course.
type CreateCourseInput struct {
	Title        string `json:"title" validate:"required,min=3,max=255"`
	Slug         string `json:"slug" validate:"omitempty,max=150"`
	Description  string `json:"description" validate:"omitempty,max=5000"`
	Level        string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	CategoryID   *uint  `json:"category_id" validate:"omitempty,min=1"`
	Price        int64  `json:"price" validate:"gte=0"`
	SalePrice    *int64 `json:"sale_price" validate:"omitempty,gte=0"`
	Currency     string `json:"currency" validate:"omitempty,len=3"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
	IsPublished  bool   `json:"is_published"`
	// InstructorID lets an admin create a course on behalf of an instructor.
	InstructorID uint `json:"instructor_id"`
}

// CreateCourse creates a course owned by the actor, or by InstructorID when the actor is an admin.
func (s *CatalogService) CreateCourse(ctx context.Context, actor Actor, in CreateCourseInput) (*model.Course, error) {
	ownerID := actor.UserID
	if actor.IsAdmin() && in.InstructorID != 0 {
		ownerID = in.InstructorID
	}

	slug := slugify(in.Slug)
	if slug == "" {
		slug = slugify(in.Title)
	}
	if slug == "" {
		return nil, apierr.Validation(apierr.FieldError{Field: "slug", Message: "slug must contain letters or digits"})
	}

	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = "INR"
	}

	course := model.Course{
		InstructorID: ownerID,
		CategoryID:   in.CategoryID,
		Title:        strings.TrimSpace(in.Title),
		Slug:         slug,
		Description:  in.Description,
		Level:        in.Level,
		Price:        in.Price,
		SalePrice:    in.SalePrice,
		Currency:     currency,
		ThumbnailURL: in.ThumbnailURL,
		IsPublished:  in.IsPublished,
	}
	if course.EffectivePrice() < 0 {
		return nil, ErrInvalidPrice
	}

	if err := s.checkCategory(ctx, s.db, in.CategoryID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrCourseSlugTaken
		}
		return nil, storageError(s.log, "create course", err)
	}

	s.log.Info("course created", "course_id", course.ID, "instructor_id", ownerID)
	return &course, nil
}

// CoursePatch is a partial course update. Nil fields are left unchanged.
type CoursePatch struct {
	Title          *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description    *string `json:"description" validate:"omitempty,max=5000"`
	Level          *string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	CategoryID     *uint   `json:"category_id" validate:"omitempty,min=1"`
	Price          *int64  `json:"price" validate:"omitempty,gte=0"`
	SalePrice      *int64  `json:"sale_price" validate:"omitempty,gte=0"`
	ClearSalePrice bool    `json:"clear_sale_price"`
	ThumbnailURL   *string `json:"thumbnail_url" validate:"omitempty,url"`
	IsPublished    *bool   `json:"is_published"`
}

func (p CoursePatch) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if p.Title != nil {
		u["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		u["description"] = *p.Description
	}
	if p.Level != nil {
		u["level"] = *p.Level
	}
	if p.CategoryID != nil {
		u["category_id"] = *p.CategoryID
	}
	if p.Price != nil {
		u["price"] = *p.Price
	}
	if p.ClearSalePrice {
		u["sale_price"] = nil
	} else if p.SalePrice != nil {
		u["sale_price"] = *p.SalePrice
	}
	if p.ThumbnailURL != nil {
		u["thumbnail_url"] = *p.ThumbnailURL
	}
	if p.IsPublished != nil {
		u["is_published"] = *p.IsPublished
	}
	return u
}

// UpdateCourse applies patch to a course the actor manages.
func (s *CatalogService) UpdateCourse(ctx context.Context, actor Actor, courseID uint, patch CoursePatch) (*model.Course, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(course.InstructorID) {
		return nil, ErrForbidden
	}

	updates := patch.updates()
	if len(updates) == 0 {
		return s.GetCourse(ctx, courseID)
	}
	if err := s.checkCategory(ctx, s.db, patch.CategoryID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(course).Updates(updates).Error; err != nil {
		return nil, storageError(s.log, "update course", err)
	}

	s.invalidate(ctx, courseID)
	return s.GetCourse(ctx, courseID)
}

// DeleteCourse soft-deletes a course the actor manages.
func (s *CatalogService) DeleteCourse(ctx context.Context, actor Actor, courseID uint) error {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if !actor.CanManage(course.InstructorID) {
		return ErrForbidden
	}

	if err := s.db.WithContext(ctx).Delete(course).Error; err != nil {
		return storageError(s.log, "delete course", err)
	}

	s.invalidate(ctx, courseID)
	s.log.Info("course deleted", "course_id", courseID, "actor_id", actor.UserID)
	return nil
}

// ListLessons returns the lesson outline of a course in display order.
func (s *CatalogService) ListLessons(ctx context.Context, courseID uint) ([]model.Lesson, error) {
	if _, err := s.loadCourse(ctx, courseID); err != nil {
		return nil, err
	}

	var lessons []model.Lesson
	if err := lessonOutline(s.db.WithContext(ctx)).Where("course_id = ?", courseID).Find(&lessons).Error; err != nil {
		return nil, storageError(s.log, "list lessons", err)
	}
	return lessons, nil
}

// GetLesson returns a full lesson record.
func (s *CatalogService) GetLesson(ctx context.Context, lessonID uint) (*model.Lesson, error) {
	var lesson model.Lesson
	if err := s.db.WithContext(ctx).First(&lesson, lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, storageError(s.log, "get lesson", err)
	}
	return &lesson, nil
}

// LessonInput is the body of a new lesson.
type LessonInput struct {
	Title           string `json:"title" validate:"required,min=1,max=255"`
	Content         string `json:"content" validate:"omitempty,max=100000"`
	VideoKey        string `json:"video_key" validate:"omitempty,max=1024"`
	DurationSeconds int    `json:"duration_seconds" validate:"gte=0"`
	Position        int    `json:"position" validate:"gte=0"`
	IsPreview       bool   `json:"is_preview"`
}

// CreateLesson appends a lesson to a course the actor manages.
func (s *CatalogService) CreateLesson(ctx context.Context, actor Actor, courseID uint, in LessonInput) (*model.Lesson, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(course.InstructorID) {
		return nil, ErrForbidden
	}

	lesson := model.Lesson{
		CourseID:        courseID,
		Title:           strings.TrimSpace(in.Title),
		Content:         in.Content,
		VideoKey:        in.VideoKey,
		DurationSeconds: in.DurationSeconds,
		Position:        in.Position,
		IsPreview:       in.IsPreview,
	}
	if err := s.db.WithContext(ctx).Create(&lesson).Error; err != nil {
		return nil, storageError(s.log, "create lesson", err)
	}

	s.invalidate(ctx, courseID)
	return &lesson, nil
}

// LessonPatch is a partial lesson update. Nil fields are left unchanged.
type LessonPatch struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content         *string `json:"content" validate:"omitempty,max=100000"`
	VideoKey        *string `json:"video_key" validate:"omitempty,max=1024"`
	DurationSeconds *int    `json:"duration_seconds" validate:"omitempty,gte=0"`
	Position        *int    `json:"position" validate:"omitempty,gte=0"`
	IsPreview       *bool   `json:"is_preview"`
}

func (p LessonPatch) updates() map[string]interface{} {
	u := map[string]interface{}{}
	if p.Title != nil {
		u["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Content != nil {
		u["content"] = *p.Content
	}
	if p.VideoKey != nil {
		u["video_key"] = *p.VideoKey
	}
	if p.DurationSeconds != nil {
		u["duration_seconds"] = *p.DurationSeconds
	}
	if p.Position != nil {
		u["position"] = *p.Position
	}
	if p.IsPreview != nil {
		u["is_preview"] = *p.IsPreview
	}
	return u
}

// UpdateLesson applies patch to a lesson of a course the actor manages.
func (s *CatalogService) UpdateLesson(ctx context.Context, actor Actor, lessonID uint, patch LessonPatch) (*model.Lesson, error) {
	lesson, err := s.manageableLesson(ctx, actor, lessonID)
	if err != nil {
		return nil, err
	}

	if updates := patch.updates(); len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(lesson).Updates(updates).Error; err != nil {
			return nil, storageError(s.log, "update lesson", err)
		}
		s.invalidate(ctx, lesson.CourseID)
	}

	return s.GetLesson(ctx, lessonID)
}

// DeleteLesson removes a lesson and, through the foreign key, its progress rows.
func (s *CatalogService) DeleteLesson(ctx context.Context, actor Actor, lessonID uint) error {
	lesson, err := s.manageableLesson(ctx, actor, lessonID)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("lesson_id = ?", lessonID).Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		return tx.Delete(lesson).Error
	})
	if err != nil {
		return storageError(s.log, "delete lesson", err)
	}

	s.invalidate(ctx, lesson.CourseID)
	return nil
}

func (s *CatalogService) manageableLesson(ctx context.Context, actor Actor, lessonID uint) (*model.Lesson, error) {
	lesson, err := s.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	course, err := s.loadCourse(ctx, lesson.CourseID)
	if err != nil {
		return nil, err
	}
	if !actor.CanManage(course.InstructorID) {
		return nil, ErrForbidden
	}
	return lesson, nil
}

// CheckCourseAccess fails with ErrNotEnrolled unless actor may read the paid
// content of the course.
func (s *CatalogService) CheckCourseAccess(ctx context.Context, actor Actor, courseID uint) error {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return err
	}
	ok, err := canAccessCourse(ctx, s.db, actor, course)
	if err != nil {
		return storageError(s.log, "check course access", err)
	}
	if !ok {
		return ErrNotEnrolled
	}
	return nil
}

// loadCourse reads the bare course row, bypassing the cache.
func (s *CatalogService) loadCourse(ctx context.Context, courseID uint) (*model.Course, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, storageError(s.log, "load course", err)
	}
	return &course, nil
}

func (s *CatalogService) checkCategory(ctx context.Context, db *gorm.DB, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	if err := db.WithContext(ctx).Model(&model.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
		return storageError(s.log, "check category", err)
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, courseID uint) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, courseID)
	}
}

// ListCategories returns every category by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, storageError(s.log, "list categories", err)
	}
	return categories, nil
}

// CategoryInput is the body of a new category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Slug        string `json:"slug" validate:"omitempty,max=120"`
	Description string `json:"description" validate:"omitempty,max=1000"`
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	slug := slugify(in.Slug)
	if slug == "" {
		slug = slugify(in.Name)
	}
	category := model.Category{Name: strings.TrimSpace(in.Name), Slug: slug, Description: in.Description}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrCategorySlugTaken
		}
		return nil, storageError(s.log, "create category", err)
	}
	return &category, nil
}

// CategoryPatch is a partial category update.
type CategoryPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

func (s *CatalogService) UpdateCategory(ctx context.Context, categoryID uint, patch CategoryPatch) (*model.Category, error) {
	var category model.Category
	if err := s.db.WithContext(ctx).First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, storageError(s.log, "get category", err)
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&category).Updates(updates).Error; err != nil {
			return nil, storageError(s.log, "update category", err)
		}
		if err := s.db.WithContext(ctx).First(&category, categoryID).Error; err != nil {
			return nil, storageError(s.log, "reload category", err)
		}
		s.invalidateCategory(ctx, s.categoryCourseIDs(ctx, categoryID))
	}
	return &category, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID uint) error {
	courseIDs := s.categoryCourseIDs(ctx, categoryID)
	result := s.db.WithContext(ctx).Delete(&model.Category{}, categoryID)
	if result.Error != nil {
		return storageError(s.log, "delete category", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	s.invalidateCategory(ctx, courseIDs)
	return nil
}

func (s *CatalogService) categoryCourseIDs(ctx context.Context, categoryID uint) []uint {
	if s.cache == nil {
		return nil
	}
	var ids []uint
	if err := s.db.WithContext(ctx).Model(&model.Course{}).Where("category_id = ?", categoryID).Pluck("id", &ids).Error; err != nil {
		s.log.Warn("list category courses", "category_id", categoryID, "error", err)
	}
	return ids
}

func (s *CatalogService) invalidateCategory(ctx context.Context, courseIDs []uint) {
	for _, id := range courseIDs {
		s.invalidate(ctx, id)
	}
}
