package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sahilchouksey/learnhub-api/model"
)

type memoryCourseCache struct {
	items map[uint]*model.Course
	hits  int
}

func (m *memoryCourseCache) Get(_ context.Context, id uint) (*model.Course, bool) {
	c, ok := m.items[id]
	if ok {
		m.hits++
	}
	return c, ok
}

func (m *memoryCourseCache) Set(_ context.Context, c *model.Course) { m.items[c.ID] = c }

func (m *memoryCourseCache) Invalidate(_ context.Context, id uint) { delete(m.items, id) }

func TestGetCourseUsesCache(t *testing.T) {
	f := newLenientFixture(t)
	cache := &memoryCourseCache{items: map[uint]*model.Course{}}
	f.catalog.cache = cache

	instructor := f.user(t, model.RoleInstructor)
	course := f.course(t, instructor.ID, 1000, 2)

	got, err := f.catalog.GetCourse(f.ctx, course.ID)
	if err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	if len(got.Lessons) != 2 || got.Lessons[0].Content != "" {
		t.Fatalf("lesson outline = %+v", got.Lessons)
	}
	if _, err := f.catalog.GetCourse(f.ctx, course.ID); err != nil {
		t.Fatalf("GetCourse cached: %v", err)
	}
	if cache.hits != 1 {
		t.Fatalf("cache hits = %d, want 1", cache.hits)
	}

	title := "Renamed"
	owner := Actor{UserID: instructor.ID, Role: model.RoleInstructor}
	updated, err := f.catalog.UpdateCourse(f.ctx, owner, course.ID, CoursePatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("Title = %q after update", updated.Title)
	}

	if _, err := f.catalog.GetCourse(f.ctx, 9999); !errors.Is(err, ErrCourseNotFound) {
		t.Fatalf("GetCourse missing = %v", err)
	}
}

func TestCategoryChangesInvalidateCachedCourses(t *testing.T) {
	f := newLenientFixture(t)
	cache := &memoryCourseCache{items: map[uint]*model.Course{}}
	f.catalog.cache = cache

	category, err := f.catalog.CreateCategory(f.ctx, CategoryInput{Name: "Backend"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	instructor := f.user(t, model.RoleInstructor)
	course := f.course(t, instructor.ID, 0, 0)
	f.db.Model(&course).Update("category_id", category.ID)

	if _, err := f.catalog.GetCourse(f.ctx, course.ID); err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	name := "Server Side"
	if _, err := f.catalog.UpdateCategory(f.ctx, category.ID, CategoryPatch{Name: &name}); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}
	got, err := f.catalog.GetCourse(f.ctx, course.ID)
	if err != nil {
		t.Fatalf("GetCourse after rename: %v", err)
	}
	if got.Category == nil || got.Category.Name != "Server Side" {
		t.Fatalf("category = %+v, want renamed", got.Category)
	}

	if err := f.catalog.DeleteCategory(f.ctx, category.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	got, err = f.catalog.GetCourse(f.ctx, course.ID)
	if err != nil {
		t.Fatalf("GetCourse after delete: %v", err)
	}
	if got.Category != nil {
		t.Fatalf("category = %+v after delete", got.Category)
	}
	if cache.hits != 0 {
		t.Fatalf("cache hits = %d, want 0", cache.hits)
	}
}

func TestPageNormalizeBoundsOffset(t *testing.T) {
	p := Page{Page: 1 << 62, Limit: 100}.Normalize()
	if p.Page != MaxPage {
		t.Fatalf("Page = %d, want %d", p.Page, MaxPage)
	}
	if off := (Page{Page: 1 << 62, Limit: 100}).Offset(); off <= 0 || off != (MaxPage-1)*100 {
		t.Fatalf("Offset = %d", off)
	}
	if off := (Page{Page: 0, Limit: 0}).Offset(); off != 0 {
		t.Fatalf("Offset = %d, want 0", off)
	}
}

func TestUpdateCoursePatchesOnlyGivenFields(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	other := f.user(t, model.RoleInstructor)
	course := f.course(t, instructor.ID, 1000, 0)
	f.db.Model(&course).Update("description", "keep me")

	price := int64(2500)
	sale := int64(1999)
	owner := Actor{UserID: instructor.ID, Role: model.RoleInstructor}
	updated, err := f.catalog.UpdateCourse(f.ctx, owner, course.ID, CoursePatch{Price: &price, SalePrice: &sale})
	if err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}
	if updated.Price != 2500 || updated.EffectivePrice() != 1999 || updated.Description != "keep me" {
		t.Fatalf("course = %+v", updated)
	}

	updated, err = f.catalog.UpdateCourse(f.ctx, owner, course.ID, CoursePatch{ClearSalePrice: true})
	if err != nil {
		t.Fatalf("UpdateCourse clear: %v", err)
	}
	if updated.SalePrice != nil {
		t.Fatalf("SalePrice = %v, want nil", *updated.SalePrice)
	}

	_, err = f.catalog.UpdateCourse(f.ctx, Actor{UserID: other.ID, Role: model.RoleInstructor}, course.ID, CoursePatch{Price: &price})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("UpdateCourse by other = %v, want ErrForbidden", err)
	}
}

func TestCreateCourseSlugs(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	actor := Actor{UserID: instructor.ID, Role: model.RoleInstructor}

	course, err := f.catalog.CreateCourse(f.ctx, actor, CreateCourseInput{Title: "Go Concurrency, Deep Dive!", Price: 1000})
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if course.Slug != "go-concurrency-deep-dive" || course.InstructorID != instructor.ID || course.Currency != "INR" {
		t.Fatalf("course = %+v", course)
	}

	_, err = f.catalog.CreateCourse(f.ctx, actor, CreateCourseInput{Title: "Go concurrency deep dive", Price: 1000})
	if !errors.Is(err, ErrCourseSlugTaken) {
		t.Fatalf("duplicate slug = %v, want ErrCourseSlugTaken", err)
	}

	missing := uint(9999)
	_, err = f.catalog.CreateCourse(f.ctx, actor, CreateCourseInput{Title: "Another", CategoryID: &missing})
	if !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("missing category = %v", err)
	}
}

func TestListCoursesFilters(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	a := f.course(t, instructor.ID, 1000, 0)
	f.db.Model(&a).Update("title", "Intro to Rust")
	b := f.course(t, instructor.ID, 1000, 0)
	f.db.Model(&b).Updates(map[string]interface{}{"title": "Rust Advanced", "is_published": false})
	f.course(t, instructor.ID, 1000, 0)

	published := true
	courses, total, err := f.catalog.ListCourses(f.ctx, CourseFilter{Search: "rust", Published: &published})
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if total != 1 || len(courses) != 1 || courses[0].ID != a.ID {
		t.Fatalf("courses = %+v (total %d)", courses, total)
	}

	_, total, _ = f.catalog.ListCourses(f.ctx, CourseFilter{InstructorID: instructor.ID})
	if total != 3 {
		t.Fatalf("instructor total = %d, want 3", total)
	}
}

func TestLessonLifecycle(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 0)
	owner := Actor{UserID: instructor.ID, Role: model.RoleInstructor}

	lesson, err := f.catalog.CreateLesson(f.ctx, owner, course.ID, LessonInput{Title: "Welcome", Content: "hello", Position: 1})
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}

	if _, err := f.catalog.CreateLesson(f.ctx, Actor{UserID: student.ID, Role: model.RoleStudent}, course.ID, LessonInput{Title: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("CreateLesson by student = %v", err)
	}

	preview := true
	updated, err := f.catalog.UpdateLesson(f.ctx, owner, lesson.ID, LessonPatch{IsPreview: &preview})
	if err != nil {
		t.Fatalf("UpdateLesson: %v", err)
	}
	if !updated.IsPreview || updated.Content != "hello" {
		t.Fatalf("lesson = %+v", updated)
	}

	f.enroll(t, student.ID, course.ID)
	if _, err := f.progress.UpdateProgress(f.ctx, UpdateProgressInput{UserID: student.ID, CourseID: course.ID, LessonID: lesson.ID, Percentage: 10}); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	if err := f.catalog.DeleteLesson(f.ctx, owner, lesson.ID); err != nil {
		t.Fatalf("DeleteLesson: %v", err)
	}
	if n := f.count(t, &model.Progress{}, "lesson_id = ?", lesson.ID); n != 0 {
		t.Fatalf("progress rows left = %d", n)
	}
	if _, err := f.catalog.GetLesson(f.ctx, lesson.ID); !errors.Is(err, ErrLessonNotFound) {
		t.Fatalf("GetLesson after delete = %v", err)
	}
}

func TestCategories(t *testing.T) {
	f := newLenientFixture(t)

	cat, err := f.catalog.CreateCategory(f.ctx, CategoryInput{Name: "Web Development"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if cat.Slug != "web-development" {
		t.Fatalf("Slug = %q", cat.Slug)
	}
	if _, err := f.catalog.CreateCategory(f.ctx, CategoryInput{Name: "web development"}); !errors.Is(err, ErrCategorySlugTaken) {
		t.Fatalf("duplicate category = %v", err)
	}

	desc := "HTML, CSS and friends"
	updated, err := f.catalog.UpdateCategory(f.ctx, cat.ID, CategoryPatch{Description: &desc})
	if err != nil || updated.Description != desc {
		t.Fatalf("UpdateCategory = %+v, %v", updated, err)
	}

	if err := f.catalog.DeleteCategory(f.ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if err := f.catalog.DeleteCategory(f.ctx, cat.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("second DeleteCategory = %v", err)
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":          "hello-world",
		"  --Go 1.22 Tips--  ": "go-1-22-tips",
		"Café au lait":         "café-au-lait",
		"!!!":                  "",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
