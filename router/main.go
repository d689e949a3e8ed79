package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/handlers"
	admin_handlers "github.com/sahilchouksey/learnhub-api/handlers/admin"
	auth_handlers "github.com/sahilchouksey/learnhub-api/handlers/auth"
	comment_handlers "github.com/sahilchouksey/learnhub-api/handlers/comment"
	content_handlers "github.com/sahilchouksey/learnhub-api/handlers/content"
	coupon_handlers "github.com/sahilchouksey/learnhub-api/handlers/coupon"
	course_handlers "github.com/sahilchouksey/learnhub-api/handlers/course"
	enrollment_handlers "github.com/sahilchouksey/learnhub-api/handlers/enrollment"
	notification_handlers "github.com/sahilchouksey/learnhub-api/handlers/notification"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"github.com/sahilchouksey/learnhub-api/utils/middleware"
	"gorm.io/gorm"
)

// Config is everything the router needs besides the service graph.
type Config struct {
	Store          database.Storage
	DB             *gorm.DB
	JWT            *auth.JWTManager
	BruteForce     *middleware.BruteForceProtection
	AllowedOrigins string
	Log            *logger.Logger
}

func SetupRoutes(app *fiber.App, cfg Config, svc *services.Registry) {
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT, cfg.DB)
	audit := func(action, resource string) fiber.Handler {
		return middleware.AdminAuditLog(cfg.DB, cfg.Log, action, resource)
	}

	authHandler := auth_handlers.NewAuthHandler(svc.Auth, cfg.BruteForce)
	courseHandler := course_handlers.NewCourseHandler(svc.Catalog, svc.Media, svc.Reviews)
	couponHandler := coupon_handlers.NewCouponHandler(svc.Coupons)
	enrollmentHandler := enrollment_handlers.NewEnrollmentHandler(svc.Enrollments, svc.Payments, svc.Progress)
	commentHandler := comment_handlers.NewCommentHandler(svc.Comments)
	contentHandler := content_handlers.NewContentHandler(svc.Content)
	notificationHandler := notification_handlers.NewNotificationHandler(svc.Notifications)
	adminHandler := admin_handlers.NewAdminHandler(svc.Admin)

	// Apply security middleware
	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    cfg.AllowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, cfg.Store))

	// API v1 group
	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	// Login with brute force protection
	if cfg.BruteForce != nil {
		authGroup.Post("/login", cfg.BruteForce.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Post("/forgot-password", authHandler.ForgotPassword)
	authGroup.Post("/reset-password", authHandler.ResetPassword)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)
	authGroup.Get("/sessions", authMiddleware.Required(), authHandler.ListSessions)
	authGroup.Delete("/sessions/:id", authMiddleware.Required(), authHandler.RevokeSession)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Patch("/", authHandler.UpdateProfile)

	// Public settings and site content
	api.Get("/settings", adminHandler.ListPublicSettings)
	api.Get("/content/:kind", contentHandler.ListActive)

	// Categories
	categories := api.Group("/categories")
	categories.Get("/", courseHandler.ListCategories)
	categories.Post("/", authMiddleware.RequireAdmin(), audit("category_create", "categories"), courseHandler.CreateCategory)
	categories.Patch("/:id", authMiddleware.RequireAdmin(), audit("category_update", "categories"), courseHandler.UpdateCategory)
	categories.Delete("/:id", authMiddleware.RequireAdmin(), audit("category_delete", "categories"), courseHandler.DeleteCategory)

	// Courses
	// Course authoring is open to instructors; admins pass every role check.
	instructor := func(h fiber.Handler) []fiber.Handler {
		return []fiber.Handler{authMiddleware.Required(), authMiddleware.RequireRole(model.RoleInstructor), h}
	}
	courses := api.Group("/courses")
	courses.Get("/", authMiddleware.Optional(), courseHandler.ListCourses)
	courses.Get("/:id", authMiddleware.Optional(), courseHandler.GetCourse)
	courses.Post("/", instructor(courseHandler.CreateCourse)...)
	courses.Patch("/:id", instructor(courseHandler.UpdateCourse)...)
	courses.Delete("/:id", instructor(courseHandler.DeleteCourse)...)

	courses.Get("/:id/lessons", courseHandler.ListLessons)
	courses.Post("/:id/lessons", instructor(courseHandler.CreateLesson)...)

	courses.Get("/:id/reviews", courseHandler.ListReviews)
	courses.Post("/:id/reviews", authMiddleware.Required(), courseHandler.CreateReview)

	courses.Post("/:id/enroll", authMiddleware.Required(), enrollmentHandler.Enroll)
	courses.Get("/:id/enrollments", instructor(enrollmentHandler.ListCourseEnrollments)...)
	courses.Post("/:id/complete", authMiddleware.Required(), enrollmentHandler.CompleteCourse)
	courses.Get("/:id/progress", authMiddleware.Required(), enrollmentHandler.GetCourseProgress)
	courses.Put("/:id/lessons/:lessonId/progress", authMiddleware.Required(), enrollmentHandler.UpdateProgress)

	// Lessons
	lessons := api.Group("/lessons")
	lessons.Get("/:id", authMiddleware.Optional(), courseHandler.GetLesson)
	lessons.Patch("/:id", instructor(courseHandler.UpdateLesson)...)
	lessons.Delete("/:id", instructor(courseHandler.DeleteLesson)...)
	lessons.Get("/:id/media", authMiddleware.Optional(), courseHandler.GetLessonMedia)
	lessons.Post("/:id/media", instructor(courseHandler.UploadLessonMedia)...)
	lessons.Get("/:id/comments", authMiddleware.Optional(), commentHandler.ListComments)
	lessons.Post("/:id/comments", authMiddleware.Required(), commentHandler.CreateComment)

	// Reviews and comments by id
	api.Patch("/reviews/:id", authMiddleware.Required(), courseHandler.UpdateReview)
	api.Delete("/reviews/:id", authMiddleware.Required(), courseHandler.DeleteReview)
	api.Patch("/comments/:id", authMiddleware.Required(), commentHandler.UpdateComment)
	api.Delete("/comments/:id", authMiddleware.Required(), commentHandler.DeleteComment)

	// Coupons (public quote)
	api.Get("/coupons/quote", couponHandler.Quote)

	// Enrollments
	enrollments := api.Group("/enrollments", authMiddleware.Required())
	enrollments.Get("/", enrollmentHandler.ListMyEnrollments)
	enrollments.Get("/:id", enrollmentHandler.GetEnrollment)
	enrollments.Delete("/:id", enrollmentHandler.Unenroll)
	enrollments.Get("/:id/payments", enrollmentHandler.ListPayments)

	// Payment provider callback, authenticated by shared secret
	api.Post("/payments/webhook", enrollmentHandler.PaymentWebhook)

	// Notifications
	notifications := api.Group("/notifications", authMiddleware.Required())
	notifications.Get("/", notificationHandler.GetNotifications)
	notifications.Get("/unread-count", notificationHandler.GetUnreadCount)
	notifications.Post("/read-all", notificationHandler.MarkAllAsRead)
	notifications.Post("/:id/read", notificationHandler.MarkAsRead)
	notifications.Delete("/", notificationHandler.DeleteAllNotifications)
	notifications.Delete("/:id", notificationHandler.DeleteNotification)

	// ==================== Admin Panel ====================

	admin := api.Group("/admin", authMiddleware.RequireAdmin())

	// Users
	admin.Get("/users", adminHandler.ListUsers)
	admin.Get("/users/:id", adminHandler.GetUser)
	admin.Patch("/users/:id", audit("user_update", "users"), adminHandler.UpdateUser)

	// Coupons
	admin.Get("/coupons", couponHandler.ListCoupons)
	admin.Get("/coupons/:id", couponHandler.GetCoupon)
	admin.Post("/coupons", audit("coupon_create", "coupons"), couponHandler.CreateCoupon)
	admin.Patch("/coupons/:id", audit("coupon_update", "coupons"), couponHandler.UpdateCoupon)
	admin.Delete("/coupons/:id", audit("coupon_delete", "coupons"), couponHandler.DeleteCoupon)

	// Payments
	admin.Patch("/payments/:id/status", audit("payment_status", "payments"), enrollmentHandler.SetPaymentStatus)

	// Content blocks
	admin.Get("/content", contentHandler.ListAll)
	admin.Get("/content/:id", contentHandler.Get)
	admin.Post("/content", audit("content_create", "content_blocks"), contentHandler.Create)
	admin.Patch("/content/:id", audit("content_update", "content_blocks"), contentHandler.Update)
	admin.Delete("/content/:id", audit("content_delete", "content_blocks"), contentHandler.Delete)

	// Settings
	admin.Get("/settings", adminHandler.ListSettings)
	admin.Get("/settings/:key", adminHandler.GetSetting)
	admin.Post("/settings", audit("setting_create", "settings"), adminHandler.CreateSetting)
	admin.Patch("/settings/:key", audit("setting_update", "settings"), adminHandler.UpdateSetting)
	admin.Delete("/settings/:key", audit("setting_delete", "settings"), adminHandler.DeleteSetting)

	// Audit logs and reports
	admin.Get("/audit-logs", adminHandler.ListAuditLogs)
	admin.Get("/reports/revenue", adminHandler.RevenueReport)
	admin.Get("/reports/enrollments", adminHandler.EnrollmentTrend)
}
