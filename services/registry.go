package services

import (
	"time"

	"github.com/sahilchouksey/learnhub-api/utils/auth"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
)

// RegistryConfig carries the collaborators and settings the services are built from.
// Every interface field may be left nil; the matching feature is then disabled.
type RegistryConfig struct {
	DB                *gorm.DB
	JWT               *auth.JWTManager
	Cache             CourseCache
	Media             MediaStore
	Reports           ReportSource
	Mailer            *EmailService
	CouponMode        string
	WebhookSecret     string
	MediaURLTTL       time.Duration
	PendingPaymentTTL time.Duration
	Log               *logger.Logger
}

// Registry is the fully wired service graph shared by the HTTP layer and the cron jobs.
type Registry struct {
	Blacklist     *auth.BlacklistService
	Auth          *AuthService
	Catalog       *CatalogService
	Coupons       *CouponService
	Progress      *ProgressService
	Enrollments   *EnrollmentService
	Payments      *PaymentService
	Notifications *NotificationService
	Media         *MediaService
	Reviews       *ReviewService
	Comments      *CommentService
	Content       *ContentService
	Admin         *AdminService

	PendingPaymentTTL time.Duration
}

func NewRegistry(cfg RegistryConfig) *Registry {
	log := orNop(cfg.Log)
	db := cfg.DB

	var resetMailer PasswordResetSender
	var receiptMailer ReceiptSender
	if cfg.Mailer != nil && cfg.Mailer.IsConfigured() {
		resetMailer = cfg.Mailer
		receiptMailer = cfg.Mailer
	}

	r := &Registry{PendingPaymentTTL: cfg.PendingPaymentTTL}
	r.Blacklist = auth.NewBlacklistService(db)
	r.Notifications = NewNotificationService(db)
	r.Auth = NewAuthService(db, cfg.JWT, r.Blacklist, resetMailer, log.With("service", "auth"))
	r.Catalog = NewCatalogService(db, cfg.Cache, log.With("service", "catalog"))
	r.Coupons = NewCouponService(db, r.Catalog, log.With("service", "coupons"))
	r.Progress = NewProgressService(db, r.Catalog, log.With("service", "progress"))
	r.Enrollments = NewEnrollmentService(db, r.Catalog, r.Coupons, r.Progress, EnrollmentDeps{
		Notifications: r.Notifications,
		Mailer:        receiptMailer,
		CouponMode:    cfg.CouponMode,
	}, log.With("service", "enrollments"))
	r.Payments = NewPaymentService(db, r.Enrollments, r.Notifications, cfg.WebhookSecret, log.With("service", "payments"))
	r.Media = NewMediaService(db, r.Catalog, cfg.Media, cfg.MediaURLTTL, log.With("service", "media"))
	r.Reviews = NewReviewService(db, r.Catalog, log.With("service", "reviews"))
	r.Comments = NewCommentService(db, r.Catalog, log.With("service", "comments"))
	r.Content = NewContentService(db, log.With("service", "content"))
	r.Admin = NewAdminService(db, r.Blacklist, cfg.Reports, log.With("service", "admin"))
	return r
}
