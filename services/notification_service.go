package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService handles user notifications
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	UserID   uint
	Type     model.NotificationType
	Category model.NotificationCategory
	Title    string
	Message  string
	Metadata *model.NotificationMetadata
}

// ListNotificationsOptions represents options for listing notifications
type ListNotificationsOptions struct {
	UserID     uint
	UnreadOnly bool
	Category   string
	Limit      int
	Offset     int
}

// CreateNotification creates a new notification for a user
func (s *NotificationService) CreateNotification(ctx context.Context, req CreateNotificationRequest) (*model.UserNotification, error) {
	notification := &model.UserNotification{
		UserID:   req.UserID,
		Type:     req.Type,
		Category: req.Category,
		Title:    req.Title,
		Message:  req.Message,
	}

	if req.Metadata != nil {
		metadataJSON, err := json.Marshal(req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		notification.Metadata = datatypes.JSON(metadataJSON)
	}

	if err := s.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	return notification, nil
}

// NotifyEnrollment tells a student their enrollment went through
func (s *NotificationService) NotifyEnrollment(ctx context.Context, enrollment *model.Enrollment, course *model.Course) error {
	_, err := s.CreateNotification(ctx, CreateNotificationRequest{
		UserID:   enrollment.UserID,
		Type:     model.NotificationTypeSuccess,
		Category: model.NotificationCategoryEnrollment,
		Title:    "Enrollment confirmed",
		Message:  fmt.Sprintf("You are now enrolled in %s.", course.Title),
		Metadata: &model.NotificationMetadata{
			CourseID:     course.ID,
			CourseTitle:  course.Title,
			EnrollmentID: enrollment.ID,
		},
	})
	return err
}

// NotifyPaymentStatus tells a student their payment changed state
func (s *NotificationService) NotifyPaymentStatus(ctx context.Context, payment *model.Payment) error {
	notificationType := model.NotificationTypeInfo
	switch payment.Status {
	case model.PaymentStatusCompleted:
		notificationType = model.NotificationTypeSuccess
	case model.PaymentStatusFailed:
		notificationType = model.NotificationTypeError
	case model.PaymentStatusRefunded:
		notificationType = model.NotificationTypeWarning
	}

	_, err := s.CreateNotification(ctx, CreateNotificationRequest{
		UserID:   payment.UserID,
		Type:     notificationType,
		Category: model.NotificationCategoryPayment,
		Title:    "Payment " + string(payment.Status),
		Message:  fmt.Sprintf("Your payment of %s is now %s.", FormatAmount(payment.Amount, payment.Currency), payment.Status),
		Metadata: &model.NotificationMetadata{
			CourseID:     payment.CourseID,
			EnrollmentID: payment.EnrollmentID,
			PaymentID:    payment.ID,
			Status:       string(payment.Status),
		},
	})
	return err
}

// GetNotificationsByUser retrieves notifications for a user
func (s *NotificationService) GetNotificationsByUser(ctx context.Context, opts ListNotificationsOptions) ([]model.UserNotification, int64, error) {
	var notifications []model.UserNotification
	var total int64

	query := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ?", opts.UserID)

	if opts.UnreadOnly {
		query = query.Where("read = ?", false)
	}

	if opts.Category != "" {
		query = query.Where("category = ?", opts.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apierr.Storage(err)
	}

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	} else {
		query = query.Limit(50)
	}

	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	if err := query.Order("created_at DESC, id DESC").Find(&notifications).Error; err != nil {
		return nil, 0, apierr.Storage(err)
	}

	return notifications, total, nil
}

// MarkAsRead marks a notification as read
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uint, userID uint) error {
	result := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)

	if result.Error != nil {
		return apierr.Storage(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotificationMissing
	}

	return nil
}

// MarkAllAsRead marks all notifications for a user as read
func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)

	if result.Error != nil {
		return 0, apierr.Storage(result.Error)
	}

	return result.RowsAffected, nil
}

// DeleteNotification deletes a notification
func (s *NotificationService) DeleteNotification(ctx context.Context, notificationID uint, userID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&model.UserNotification{})

	if result.Error != nil {
		return apierr.Storage(result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrNotificationMissing
	}

	return nil
}

// DeleteAllNotifications deletes every notification of a user
func (s *NotificationService) DeleteAllNotifications(ctx context.Context, userID uint) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.UserNotification{})

	if result.Error != nil {
		return 0, apierr.Storage(result.Error)
	}

	return result.RowsAffected, nil
}

// GetUnreadCount returns the count of unread notifications for a user
func (s *NotificationService) GetUnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64

	err := s.db.WithContext(ctx).Model(&model.UserNotification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error

	if err != nil {
		return 0, apierr.Storage(err)
	}

	return count, nil
}

// CleanupOldNotifications removes read notifications older than the specified duration
func (s *NotificationService) CleanupOldNotifications(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	result := s.db.WithContext(ctx).Unscoped().
		Where("created_at < ? AND read = ?", cutoff, true).
		Delete(&model.UserNotification{})

	if result.Error != nil {
		return 0, fmt.Errorf("failed to cleanup old notifications: %w", result.Error)
	}

	return result.RowsAffected, nil
}
