package database

import (
	"fmt"
	"strings"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	applog "github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
)

// SeedOptions controls what the seeder creates.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	// SampleCatalog adds a demo instructor with a few published courses.
	SampleCatalog bool
}

// Seeder handles database seeding operations
type Seeder struct {
	db   *gorm.DB
	opts SeedOptions
	log  *applog.Logger
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, opts SeedOptions, log *applog.Logger) *Seeder {
	if log == nil {
		log = applog.Nop()
	}
	return &Seeder{db: db, opts: opts, log: log}
}

// SeedAll runs all seed functions. Every step is skipped when its table
// already holds data, so seeding twice is harmless.
func (s *Seeder) SeedAll() error {
	s.log.Info("starting database seeding")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if s.opts.SampleCatalog {
		if err := s.SeedSampleCourses(); err != nil {
			return fmt.Errorf("failed to seed sample courses: %w", err)
		}
	}

	if err := s.SeedAppSettings(); err != nil {
		return fmt.Errorf("failed to seed app settings: %w", err)
	}

	if err := s.SeedContentBlocks(); err != nil {
		return fmt.Errorf("failed to seed content blocks: %w", err)
	}

	s.log.Info("database seeding completed")
	return nil
}

// SeedAdminUser creates the default admin user from the configured credentials
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		s.log.Info("admin user already exists, skipping")
		return nil
	}

	if s.opts.AdminEmail == "" || s.opts.AdminPassword == "" {
		s.log.Warn("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(s.opts.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(s.opts.AdminEmail))
	admin := &model.User{
		Email:        email,
		Username:     "admin",
		PasswordHash: passwordHash,
		Name:         "System Administrator",
		Role:         model.RoleAdmin,
		Status:       model.UserStatusActive,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	s.log.Info("created admin user", "email", admin.Email)
	return nil
}

var defaultCategories = []model.Category{
	{Name: "Programming", Slug: "programming", Description: "Languages, frameworks and software craft"},
	{Name: "Data Science", Slug: "data-science", Description: "Statistics, machine learning and analytics"},
	{Name: "Design", Slug: "design", Description: "Product, interface and visual design"},
	{Name: "Business", Slug: "business", Description: "Management, marketing and entrepreneurship"},
	{Name: "Personal Development", Slug: "personal-development", Description: "Productivity, communication and careers"},
}

// SeedCategories creates the default course categories
func (s *Seeder) SeedCategories() error {
	var count int64
	if err := s.db.Model(&model.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.log.Info("categories already exist, skipping")
		return nil
	}

	categories := make([]model.Category, len(defaultCategories))
	copy(categories, defaultCategories)
	if err := s.db.Create(&categories).Error; err != nil {
		return err
	}

	s.log.Info("created categories", "count", len(categories))
	return nil
}

type sampleCourse struct {
	title     string
	slug      string
	category  string
	level     string
	price     int64
	salePrice *int64
	lessons   []string
}

func int64Ptr(v int64) *int64 { return &v }

var sampleCourses = []sampleCourse{
	{
		title: "Go for Backend Developers", slug: "go-for-backend-developers", category: "programming",
		level: "intermediate", price: 299900, salePrice: int64Ptr(199900),
		lessons: []string{"Tooling and modules", "Types and interfaces", "Errors", "Concurrency", "HTTP services"},
	},
	{
		title: "SQL Fundamentals", slug: "sql-fundamentals", category: "data-science",
		level: "beginner", price: 0,
		lessons: []string{"Tables and rows", "Filtering", "Joins", "Aggregates"},
	},
	{
		title: "Interface Design Basics", slug: "interface-design-basics", category: "design",
		level: "beginner", price: 149900,
		lessons: []string{"Layout", "Typography", "Color", "Prototyping"},
	},
}

// SeedSampleCourses creates a demo instructor with published courses
func (s *Seeder) SeedSampleCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.log.Info("courses already exist, skipping")
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		hash, err := auth.HashPassword("instructor-demo-password")
		if err != nil {
			return err
		}
		instructor := model.User{
			Email:        "instructor@learnhub.dev",
			Username:     "demo_instructor",
			PasswordHash: hash,
			Name:         "Demo Instructor",
			Role:         model.RoleInstructor,
			Status:       model.UserStatusActive,
		}
		if err := tx.Where(model.User{Email: instructor.Email}).FirstOrCreate(&instructor).Error; err != nil {
			return err
		}

		var categories []model.Category
		if err := tx.Find(&categories).Error; err != nil {
			return err
		}
		bySlug := make(map[string]uint, len(categories))
		for _, c := range categories {
			bySlug[c.Slug] = c.ID
		}

		for _, sc := range sampleCourses {
			course := model.Course{
				InstructorID: instructor.ID,
				Title:        sc.title,
				Slug:         sc.slug,
				Description:  "A hands-on introduction: " + strings.ToLower(sc.title) + ".",
				Level:        sc.level,
				Price:        sc.price,
				SalePrice:    sc.salePrice,
				Currency:     "INR",
				IsPublished:  true,
			}
			if id, ok := bySlug[sc.category]; ok {
				course.CategoryID = &id
			}
			for i, title := range sc.lessons {
				course.Lessons = append(course.Lessons, model.Lesson{
					Title:           title,
					Content:         "Lesson notes for " + title + ".",
					DurationSeconds: 600,
					Position:        i + 1,
					IsPreview:       i == 0,
				})
			}
			if err := tx.Create(&course).Error; err != nil {
				return err
			}
		}

		s.log.Info("created sample courses", "count", len(sampleCourses))
		return nil
	})
}

// SeedAppSettings creates default application settings
func (s *Seeder) SeedAppSettings() error {
	var count int64
	if err := s.db.Model(&model.AppSetting{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		s.log.Info("app settings already exist, skipping")
		return nil
	}

	settings := []model.AppSetting{
		// System Information
		{Key: "system.name", Value: "LearnHub", Type: "string", Description: "Application name", IsPublic: true},
		{Key: "system.maintenance_mode", Value: "false", Type: "bool", Description: "Restrict access while maintenance is running", IsPublic: true},
		{Key: "system.support_email", Value: "support@learnhub.dev", Type: "string", Description: "Address shown to users for help", IsPublic: true},

		// Catalog
		{Key: "catalog.default_currency", Value: "INR", Type: "string", Description: "Currency for new courses", IsPublic: true},
		{Key: "catalog.featured_course_ids", Value: "[]", Type: "json", Description: "Courses highlighted on the home page", IsPublic: true},

		// Reviews
		{Key: "reviews.min_rating", Value: "1", Type: "int", Description: "Lowest accepted review rating", IsPublic: true},
		{Key: "reviews.max_rating", Value: "5", Type: "int", Description: "Highest accepted review rating", IsPublic: true},
	}

	if err := s.db.Create(&settings).Error; err != nil {
		return err
	}

	s.log.Info("created app settings", "count", len(settings))
	return nil
}

// SeedContentBlocks creates the default menu and home banner
func (s *Seeder) SeedContentBlocks() error {
	var count int64
	if err := s.db.Model(&model.ContentBlock{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		s.log.Info("content blocks already exist, skipping")
		return nil
	}

	blocks := []model.ContentBlock{
		{Kind: model.ContentKindMenu, Title: "Courses", LinkURL: "/courses", Position: 1, IsActive: true},
		{Kind: model.ContentKindMenu, Title: "Categories", LinkURL: "/categories", Position: 2, IsActive: true},
		{Kind: model.ContentKindMenu, Title: "My Learning", LinkURL: "/me/enrollments", Position: 3, IsActive: true},
		{Kind: model.ContentKindBanner, Title: "Learn something new today", Body: "Hundreds of lessons from practising instructors.", LinkURL: "/courses", Position: 1, IsActive: true},
		{Kind: model.ContentKindWidget, Title: "Popular categories", Position: 1, IsActive: true},
	}
	if err := s.db.Create(&blocks).Error; err != nil {
		return err
	}

	s.log.Info("created content blocks", "count", len(blocks))
	return nil
}

// RunSeeds is a convenience function to run all seeds
func RunSeeds(db *gorm.DB, opts SeedOptions, log *applog.Logger) error {
	return NewSeeder(db, opts, log).SeedAll()
}
