package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"github.com/sahilchouksey/learnhub-api/utils/logger"
	"gorm.io/gorm"
)

// PaymentService records externally driven payment status changes.
// Any status may follow any other.
type PaymentService struct {
	db            *gorm.DB
	enrollments   *EnrollmentService
	notifications *NotificationService
	webhookSecret string
	log           *logger.Logger
}

func NewPaymentService(db *gorm.DB, enrollments *EnrollmentService, notifications *NotificationService, webhookSecret string, log *logger.Logger) *PaymentService {
	return &PaymentService{
		db:            db,
		enrollments:   enrollments,
		notifications: notifications,
		webhookSecret: webhookSecret,
		log:           orNop(log),
	}
}

// ListForEnrollment returns the payments of an enrollment visible to actor.
func (s *PaymentService) ListForEnrollment(ctx context.Context, enrollmentID uint, actor Actor) ([]model.Payment, error) {
	if _, err := s.enrollments.GetEnrollment(ctx, enrollmentID, actor); err != nil {
		return nil, err
	}

	var payments []model.Payment
	if err := s.db.WithContext(ctx).Where("enrollment_id = ?", enrollmentID).
		Order("created_at DESC, id DESC").Find(&payments).Error; err != nil {
		return nil, storageError(s.log, "list payments", err)
	}
	return payments, nil
}

// SetStatus changes a payment's status by id.
func (s *PaymentService) SetStatus(ctx context.Context, paymentID uint, status model.PaymentStatus) (*model.Payment, error) {
	return s.transition(ctx, s.db.WithContext(ctx).Where("id = ?", paymentID), status)
}

// WebhookEvent is a provider callback keyed by transaction id.
type WebhookEvent struct {
	TransactionID string              `json:"transaction_id" validate:"required,max=100"`
	Status        model.PaymentStatus `json:"status" validate:"required,oneof=pending completed failed refunded"`
}

// HandleWebhook authenticates a provider callback and applies its status.
func (s *PaymentService) HandleWebhook(ctx context.Context, secret string, event WebhookEvent) (*model.Payment, error) {
	if !s.VerifySecret(secret) {
		return nil, ErrWebhookUnauthorized
	}
	return s.transition(ctx, s.db.WithContext(ctx).Where("transaction_id = ?", event.TransactionID), event.Status)
}

// VerifySecret compares secret with the configured webhook secret in constant time.
// An unset secret rejects every caller.
func (s *PaymentService) VerifySecret(secret string) bool {
	if s.webhookSecret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.webhookSecret)) == 1
}

func (s *PaymentService) transition(ctx context.Context, scope *gorm.DB, status model.PaymentStatus) (*model.Payment, error) {
	if !status.Valid() {
		return nil, ErrInvalidPaymentStatus
	}

	var payment model.Payment
	if err := scope.First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, storageError(s.log, "find payment", err)
	}
	if payment.Status == status {
		return &payment, nil
	}

	previous := payment.Status
	updates := map[string]interface{}{"status": status}
	if status == model.PaymentStatusCompleted && payment.PaidAt == nil {
		now := time.Now()
		updates["paid_at"] = now
		payment.PaidAt = &now
	}
	if err := s.db.WithContext(ctx).Model(&model.Payment{}).Where("id = ?", payment.ID).Updates(updates).Error; err != nil {
		return nil, storageError(s.log, "update payment", err)
	}
	payment.Status = status

	s.log.Info("payment status changed", "payment_id", payment.ID, "from", previous, "to", status)
	if s.notifications != nil {
		if err := s.notifications.NotifyPaymentStatus(ctx, &payment); err != nil {
			s.log.Warn("payment notification failed", "payment_id", payment.ID, "error", err)
		}
	}
	return &payment, nil
}

// FailStalePending marks pending payments older than maxAge as failed.
func (s *PaymentService) FailStalePending(ctx context.Context, maxAge time.Duration) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Payment{}).
		Where("status = ? AND created_at < ?", model.PaymentStatusPending, time.Now().Add(-maxAge)).
		Update("status", model.PaymentStatusFailed)
	if result.Error != nil {
		return 0, apierr.Storage(result.Error)
	}
	return result.RowsAffected, nil
}
