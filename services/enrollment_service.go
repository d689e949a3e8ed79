package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sahilchouksey/learnhub-api/config"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ReceiptSender delivers enrollment confirmations.
type ReceiptSender interface {
	SendEnrollmentReceipt(r EnrollmentReceipt) error
}

// EnrollmentService is the ledger of course purchases.
type EnrollmentService struct {
	db            *gorm.DB
	catalog       *CatalogService
	coupons       *CouponService
	progress      *ProgressService
	notifications *NotificationService
	mailer        ReceiptSender
	couponMode    string
	log           *logger.Logger
}

// EnrollmentDeps are the optional collaborators of an EnrollmentService.
type EnrollmentDeps struct {
	Notifications *NotificationService
	Mailer        ReceiptSender
	CouponMode    string
}

func NewEnrollmentService(db *gorm.DB, catalog *CatalogService, coupons *CouponService, progress *ProgressService, deps EnrollmentDeps, log *logger.Logger) *EnrollmentService {
	mode := deps.CouponMode
	if mode != config.CouponModeStrict {
		mode = config.CouponModeLenient
	}
	return &EnrollmentService{
		db:            db,
		catalog:       catalog,
		coupons:       coupons,
		progress:      progress,
		notifications: deps.Notifications,
		mailer:        deps.Mailer,
		couponMode:    mode,
		log:           orNop(log),
	}
}

// PaymentInput describes a payment captured together with an enrollment.
type PaymentInput struct {
	Method        string                 `json:"method" validate:"required,max=50"`
	Status        model.PaymentStatus    `json:"status" validate:"omitempty,oneof=pending completed failed refunded"`
	TransactionID string                 `json:"transaction_id" validate:"omitempty,max=100"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// EnrollInput is a purchase request.
type EnrollInput struct {
	UserID     uint
	CourseID   uint
	CouponCode string
	Payment    *PaymentInput
}

// Enroll purchases a course for a user. The coupon redemption, the enrollment
// and the payment are written in one transaction.
func (s *EnrollmentService) Enroll(ctx context.Context, in EnrollInput) (*model.Enrollment, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, in.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError(s.log, "load user", err)
	}
	if !user.IsActive() {
		return nil, ErrUserInactive
	}

	course, err := s.catalog.GetCourse(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}
	if !course.IsPublished {
		return nil, ErrCourseNotPublished
	}
	if course.EffectivePrice() < 0 {
		return nil, ErrInvalidPrice
	}

	quote, err := s.coupons.quote(ctx, s.db, in.CouponCode, course)
	if err != nil {
		return nil, err
	}
	if quote.CouponCode != "" && !quote.Applied && s.couponMode == config.CouponModeStrict {
		return nil, ErrInvalidCoupon
	}

	var payment *model.Payment
	if in.Payment != nil {
		payment, err = newPayment(in.Payment)
		if err != nil {
			return nil, err
		}
	}

	enrollment := model.Enrollment{
		UserID:        user.ID,
		CourseID:      course.ID,
		OriginalPrice: quote.OriginalPrice,
		TotalAmount:   quote.OriginalPrice,
		Currency:      course.Currency,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if quote.Applied {
			redeemed, err := s.coupons.redeem(tx, quote.coupon.ID)
			if err != nil {
				return err
			}
			switch {
			case redeemed:
				enrollment.CouponID = &quote.coupon.ID
				enrollment.DiscountAmount = quote.Discount
				enrollment.TotalAmount = quote.Total
			case s.couponMode == config.CouponModeStrict:
				return ErrInvalidCoupon
			default:
				s.log.Info("coupon exhausted during enrollment, charging full price",
					"coupon_id", quote.coupon.ID, "user_id", user.ID, "course_id", course.ID)
			}
		}

		if err := tx.Create(&enrollment).Error; err != nil {
			if isDuplicate(err) {
				return ErrAlreadyEnrolled
			}
			return err
		}

		if payment != nil {
			payment.EnrollmentID = enrollment.ID
			payment.UserID = user.ID
			payment.CourseID = course.ID
			payment.Amount = enrollment.TotalAmount
			payment.Currency = enrollment.Currency
			if err := tx.Create(payment).Error; err != nil {
				if isDuplicate(err) {
					return ErrDuplicateTransaction
				}
				return err
			}
			enrollment.Payments = []model.Payment{*payment}
		}
		return nil
	})
	if err != nil {
		if _, ok := apierr.As(err); ok {
			return nil, err
		}
		return nil, storageError(s.log, "enroll", err)
	}

	s.log.Info("user enrolled",
		"enrollment_id", enrollment.ID, "user_id", user.ID, "course_id", course.ID,
		"total_amount", enrollment.TotalAmount, "discount_amount", enrollment.DiscountAmount)
	s.afterEnroll(ctx, &user, course, &enrollment)

	return &enrollment, nil
}

func newPayment(in *PaymentInput) (*model.Payment, error) {
	status := in.Status
	if status == "" {
		status = model.PaymentStatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}

	payment := &model.Payment{Method: in.Method, Status: status}
	if in.TransactionID != "" {
		txID := in.TransactionID
		payment.TransactionID = &txID
	}
	if status == model.PaymentStatusCompleted {
		now := time.Now()
		payment.PaidAt = &now
	}
	if len(in.Metadata) > 0 {
		raw, err := json.Marshal(in.Metadata)
		if err != nil {
			return nil, apierr.Validation(apierr.FieldError{Field: "metadata", Message: "metadata must be a JSON object"})
		}
		payment.Metadata = datatypes.JSON(raw)
	}
	return payment, nil
}

// afterEnroll runs the best-effort side effects of a committed enrollment.
func (s *EnrollmentService) afterEnroll(ctx context.Context, user *model.User, course *model.Course, enrollment *model.Enrollment) {
	if s.notifications != nil {
		if err := s.notifications.NotifyEnrollment(ctx, enrollment, course); err != nil {
			s.log.Warn("enrollment notification failed", "enrollment_id", enrollment.ID, "error", err)
		}
	}
	if s.mailer != nil {
		receipt := EnrollmentReceipt{
			Email:       user.Email,
			Name:        user.Name,
			CourseID:    course.ID,
			CourseTitle: course.Title,
			Currency:    enrollment.Currency,
			Price:       enrollment.OriginalPrice,
			Discount:    enrollment.DiscountAmount,
			Total:       enrollment.TotalAmount,
		}
		go func() {
			if err := s.mailer.SendEnrollmentReceipt(receipt); err != nil {
				s.log.Warn("enrollment receipt failed", "enrollment_id", enrollment.ID, "error", err)
			}
		}()
	}
}

// Unenroll deletes an enrollment with its payments and the user's progress in
// the course. Only the owner or an admin may do so. Coupon usage is kept.
func (s *EnrollmentService) Unenroll(ctx context.Context, enrollmentID uint, actor Actor) error {
	enrollment, err := s.GetEnrollment(ctx, enrollmentID, actor)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("enrollment_id = ?", enrollment.ID).Delete(&model.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND course_id = ?", enrollment.UserID, enrollment.CourseID).
			Delete(&model.Progress{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&model.Enrollment{}, enrollment.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrEnrollmentNotFound
		}
		return nil
	})
	if err != nil {
		if _, ok := apierr.As(err); ok {
			return err
		}
		return storageError(s.log, "unenroll", err)
	}

	s.log.Info("user unenrolled",
		"enrollment_id", enrollment.ID, "user_id", enrollment.UserID, "course_id", enrollment.CourseID, "actor_id", actor.UserID)
	return nil
}

// GetEnrollment returns an enrollment visible to actor.
func (s *EnrollmentService) GetEnrollment(ctx context.Context, enrollmentID uint, actor Actor) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	err := s.db.WithContext(ctx).Preload("Payments").First(&enrollment, enrollmentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEnrollmentNotFound
		}
		return nil, storageError(s.log, "get enrollment", err)
	}
	if !actor.CanManage(enrollment.UserID) {
		return nil, ErrForbidden
	}
	return &enrollment, nil
}

// ListUserEnrollments returns a user's enrollments with their courses, newest first.
func (s *EnrollmentService) ListUserEnrollments(ctx context.Context, userID uint, page Page) ([]model.Enrollment, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.Enrollment{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError(s.log, "count enrollments", err)
	}

	page = page.Normalize()
	var enrollments []model.Enrollment
	err := query.Preload("Course").
		Order("created_at DESC, id DESC").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, storageError(s.log, "list enrollments", err)
	}
	return enrollments, total, nil
}

// ListCourseEnrollments returns the roster of a course the actor manages.
func (s *EnrollmentService) ListCourseEnrollments(ctx context.Context, courseID uint, actor Actor, page Page) ([]model.Enrollment, int64, error) {
	course, err := s.catalog.loadCourse(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}
	if !actor.CanManage(course.InstructorID) {
		return nil, 0, ErrForbidden
	}

	query := s.db.WithContext(ctx).Model(&model.Enrollment{}).Where("course_id = ?", courseID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, storageError(s.log, "count course enrollments", err)
	}

	page = page.Normalize()
	var enrollments []model.Enrollment
	err = query.Preload("User").
		Order("created_at DESC, id DESC").
		Limit(page.Limit).Offset(page.Offset()).
		Find(&enrollments).Error
	if err != nil {
		return nil, 0, storageError(s.log, "list course enrollments", err)
	}
	return enrollments, total, nil
}

// IsEnrolled reports whether userID holds an enrollment in courseID.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID, courseID uint) (bool, error) {
	return isEnrolled(ctx, s.db, userID, courseID)
}

func isEnrolled(ctx context.Context, db *gorm.DB, userID, courseID uint) (bool, error) {
	var count int64
	err := db.WithContext(ctx).Model(&model.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkCourseCompleted sets every lesson of the course to complete for the user
// in one transaction and returns the resulting progress.
func (s *EnrollmentService) MarkCourseCompleted(ctx context.Context, userID, courseID uint) (*CourseProgress, error) {
	return s.progress.CompleteCourse(ctx, userID, courseID)
}
