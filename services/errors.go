package services

import (
	"errors"
	"net/http"

	"github.com/sahilchouksey/learnhub-api/utils/apierr"
)

// Domain failures returned by the services. Compare with errors.Is.
var (
	ErrUserNotFound      = apierr.NotFound("USER_NOT_FOUND", "user not found")
	ErrUserInactive      = apierr.Forbidden("USER_INACTIVE", "user account is inactive")
	ErrEmailTaken        = apierr.Conflict("EMAIL_TAKEN", "email is already registered")
	ErrUsernameTaken     = apierr.Conflict("USERNAME_TAKEN", "username is already taken")
	ErrInvalidCredential = apierr.Unauthorized("INVALID_CREDENTIALS", "invalid email or password")

	ErrCategoryNotFound   = apierr.NotFound("CATEGORY_NOT_FOUND", "category not found")
	ErrCategorySlugTaken  = apierr.Conflict("CATEGORY_EXISTS", "a category with this slug already exists")
	ErrCourseNotFound     = apierr.NotFound("COURSE_NOT_FOUND", "course not found")
	ErrCourseNotPublished = apierr.Conflict("COURSE_NOT_PUBLISHED", "course is not open for enrollment")
	ErrCourseSlugTaken    = apierr.Conflict("COURSE_EXISTS", "a course with this slug already exists")
	ErrInvalidPrice       = apierr.Validation(apierr.FieldError{Field: "price", Message: "price must not be negative"})
	ErrLessonNotFound     = apierr.NotFound("LESSON_NOT_FOUND", "lesson not found")
	ErrLessonNotInCourse  = apierr.BadRequest("LESSON_NOT_IN_COURSE", "lesson does not belong to this course")
	ErrMediaUnavailable   = apierr.NotFound("MEDIA_UNAVAILABLE", "lesson has no media")
	ErrStorageDisabled    = apierr.New(http.StatusServiceUnavailable, "STORAGE_DISABLED", errors.New("media storage is not configured"))

	ErrCouponNotFound  = apierr.NotFound("COUPON_NOT_FOUND", "coupon not found")
	ErrCouponCodeTaken = apierr.Conflict("COUPON_EXISTS", "a coupon with this code already exists")
	ErrInvalidCoupon   = apierr.BadRequest("INVALID_COUPON", "coupon is not valid for this course")

	ErrAlreadyEnrolled    = apierr.Conflict("ALREADY_ENROLLED", "user is already enrolled in this course")
	ErrEnrollmentNotFound = apierr.NotFound("ENROLLMENT_NOT_FOUND", "enrollment not found")
	ErrNotEnrolled        = apierr.Forbidden("NOT_ENROLLED", "user is not enrolled in this course")
	ErrForbidden          = apierr.Forbidden("FORBIDDEN", "you do not have access to this resource")

	ErrPaymentNotFound      = apierr.NotFound("PAYMENT_NOT_FOUND", "payment not found")
	ErrInvalidPaymentStatus = apierr.Validation(apierr.FieldError{Field: "status", Message: "status must be one of: pending completed failed refunded"})
	ErrDuplicateTransaction = apierr.Conflict("DUPLICATE_TRANSACTION", "transaction id is already recorded")
	ErrWebhookUnauthorized  = apierr.Unauthorized("INVALID_WEBHOOK_SECRET", "invalid webhook secret")

	ErrReviewNotFound      = apierr.NotFound("REVIEW_NOT_FOUND", "review not found")
	ErrAlreadyReviewed     = apierr.Conflict("ALREADY_REVIEWED", "you have already reviewed this course")
	ErrCommentNotFound     = apierr.NotFound("COMMENT_NOT_FOUND", "comment not found")
	ErrContentNotFound     = apierr.NotFound("CONTENT_NOT_FOUND", "content block not found")
	ErrNotificationMissing = apierr.NotFound("NOTIFICATION_NOT_FOUND", "notification not found")
	ErrSettingNotFound     = apierr.NotFound("SETTING_NOT_FOUND", "setting not found")
	ErrSettingExists       = apierr.Conflict("SETTING_EXISTS", "a setting with this key already exists")
	ErrSelfDemotion        = apierr.BadRequest("SELF_MODIFICATION", "admins cannot change their own role or status")
	ErrReportsDisabled     = apierr.New(http.StatusServiceUnavailable, "REPORTS_UNAVAILABLE", errors.New("reports are not available"))

	ErrSessionNotFound = apierr.NotFound("SESSION_NOT_FOUND", "session not found")
	ErrSessionEnded    = apierr.Unauthorized("SESSION_ENDED", "session has been revoked or has expired")
	ErrInvalidToken    = apierr.Unauthorized("INVALID_TOKEN", "invalid or expired token")
	ErrResetTokenUsed  = apierr.BadRequest("INVALID_RESET_TOKEN", "reset token is invalid or has expired")
)
