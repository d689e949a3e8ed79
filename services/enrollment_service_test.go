package services

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sahilchouksey/learnhub-api/config"
	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
)

func TestEnrollAppliesCoupon(t *testing.T) {
	tests := []struct {
		name         string
		typ          model.CouponType
		value        int64
		wantDiscount int64
		wantTotal    int64
	}{
		{"percentage", model.CouponTypePercentage, 20, 20000, 80000},
		{"fixed", model.CouponTypeFixed, 15000, 15000, 85000},
		{"fixed above price", model.CouponTypeFixed, 250000, 100000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLenientFixture(t)
			instructor := f.user(t, model.RoleInstructor)
			student := f.user(t, model.RoleStudent)
			course := f.course(t, instructor.ID, 100000, 1)
			coupon := f.coupon(t, "save", tt.typ, tt.value, nil)

			e, err := f.enrollments.Enroll(f.ctx, EnrollInput{UserID: student.ID, CourseID: course.ID, CouponCode: "SAVE"})
			if err != nil {
				t.Fatalf("Enroll: %v", err)
			}
			if e.OriginalPrice != 100000 || e.DiscountAmount != tt.wantDiscount || e.TotalAmount != tt.wantTotal {
				t.Fatalf("amounts = %d/%d/%d, want 100000/%d/%d",
					e.OriginalPrice, e.DiscountAmount, e.TotalAmount, tt.wantDiscount, tt.wantTotal)
			}
			if e.CouponID == nil || *e.CouponID != coupon.ID {
				t.Fatalf("CouponID = %v, want %d", e.CouponID, coupon.ID)
			}

			var reloaded model.Coupon
			f.db.First(&reloaded, coupon.ID)
			if reloaded.UsedCount != 1 {
				t.Fatalf("UsedCount = %d, want 1", reloaded.UsedCount)
			}
		})
	}
}

func TestEnrollIgnoresUnusableCouponInLenientMode(t *testing.T) {
	past := time.Now().Add(-24 * time.Hour)
	future := time.Now().Add(24 * time.Hour)
	one := 1

	tests := []struct {
		name   string
		mutate func(*model.Coupon)
	}{
		{"expired", func(c *model.Coupon) { c.ValidUntil = &past }},
		{"not yet valid", func(c *model.Coupon) { c.ValidFrom = &future }},
		{"exhausted", func(c *model.Coupon) { c.MaxUses = &one; c.UsedCount = 1 }},
		{"inactive", func(c *model.Coupon) { c.IsActive = false }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLenientFixture(t)
			instructor := f.user(t, model.RoleInstructor)
			student := f.user(t, model.RoleStudent)
			course := f.course(t, instructor.ID, 100000, 1)
			coupon := f.coupon(t, "promo", model.CouponTypePercentage, 50, tt.mutate)

			e, err := f.enrollments.Enroll(f.ctx, EnrollInput{UserID: student.ID, CourseID: course.ID, CouponCode: "promo"})
			if err != nil {
				t.Fatalf("Enroll: %v", err)
			}
			if e.DiscountAmount != 0 || e.TotalAmount != 100000 || e.CouponID != nil {
				t.Fatalf("coupon applied: discount=%d total=%d coupon=%v", e.DiscountAmount, e.TotalAmount, e.CouponID)
			}

			var reloaded model.Coupon
			f.db.First(&reloaded, coupon.ID)
			if reloaded.UsedCount != coupon.UsedCount {
				t.Fatalf("UsedCount changed from %d to %d", coupon.UsedCount, reloaded.UsedCount)
			}
		})
	}
}

func TestEnrollUnknownCouponLenient(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 5000, 0)

	e, err := f.enrollments.Enroll(f.ctx, EnrollInput{UserID: student.ID, CourseID: course.ID, CouponCode: "NOPE"})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if e.TotalAmount != 5000 {
		t.Fatalf("TotalAmount = %d", e.TotalAmount)
	}
}

func TestEnrollStrictModeRejectsUnusableCoupon(t *testing.T) {
	f := newFixture(t, config.CouponModeStrict)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 100000, 1)
	past := time.Now().Add(-time.Hour)
	f.coupon(t, "old", model.CouponTypeFixed, 1000, func(c *model.Coupon) { c.ValidUntil = &past })

	_, err := f.enrollments.Enroll(f.ctx, EnrollInput{UserID: student.ID, CourseID: course.ID, CouponCode: "old"})
	if !errors.Is(err, ErrInvalidCoupon) {
		t.Fatalf("Enroll error = %v, want ErrInvalidCoupon", err)
	}
	if n := f.count(t, &model.Enrollment{}, "user_id = ?", student.ID); n != 0 {
		t.Fatalf("enrollments = %d, want 0", n)
	}
}

func TestEnrollDuplicateIsConflict(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 1)
	coupon := f.coupon(t, "twice", model.CouponTypeFixed, 100, nil)

	f.enroll(t, student.ID, course.ID)

	_, err := f.enrollments.Enroll(f.ctx, EnrollInput{UserID: student.ID, CourseID: course.ID, CouponCode: "twice"})
	if !errors.Is(err, ErrAlreadyEnrolled) {
		t.Fatalf("Enroll error = %v, want ErrAlreadyEnrolled", err)
	}
	if got := apierr.StatusOf(err); got != http.StatusConflict {
		t.Fatalf("status = %d, want 409", got)
	}

	// the coupon increment rolled back with the failed insert
	var reloaded model.Coupon
	f.db.First(&reloaded, coupon.ID)
	if reloaded.UsedCount != 0 {
		t.Fatalf("UsedCount = %d, want 0", reloaded.UsedCount)
	}
}

func TestEnrollPreconditions(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 1)

	inactive := f.user(t, model.RoleStudent)
	f.db.Model(&inactive).Update("status", model.UserStatusInactive)

	draft := f.course(t, instructor.ID, 1000, 1)
	f.db.Model(&draft).Update("is_published", false)

	tests := []struct {
		name string
		in   EnrollInput
		want error
	}{
		{"missing user", EnrollInput{UserID: 9999, CourseID: course.ID}, ErrUserNotFound},
		{"inactive user", EnrollInput{UserID: inactive.ID, CourseID: course.ID}, ErrUserInactive},
		{"missing course", EnrollInput{UserID: student.ID, CourseID: 9999}, ErrCourseNotFound},
		{"draft course", EnrollInput{UserID: student.ID, CourseID: draft.ID}, ErrCourseNotPublished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.enrollments.Enroll(f.ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("Enroll error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestEnrollWithPaymentIsAtomic(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	first := f.user(t, model.RoleStudent)
	second := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 100000, 1)
	coupon := f.coupon(t, "pay", model.CouponTypePercentage, 10, nil)

	e, err := f.enrollments.Enroll(f.ctx, EnrollInput{
		UserID:     first.ID,
		CourseID:   course.ID,
		CouponCode: "pay",
		Payment:    &PaymentInput{Method: "card", TransactionID: "txn-1"},
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	var payment model.Payment
	if err := f.db.Where("enrollment_id = ?", e.ID).First(&payment).Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if payment.Status != model.PaymentStatusPending || payment.Amount != 90000 || payment.UserID != first.ID {
		t.Fatalf("payment = %+v", payment)
	}

	// reusing the transaction id fails the whole unit of work
	_, err = f.enrollments.Enroll(f.ctx, EnrollInput{
		UserID:     second.ID,
		CourseID:   course.ID,
		CouponCode: "pay",
		Payment:    &PaymentInput{Method: "card", TransactionID: "txn-1"},
	})
	if !errors.Is(err, ErrDuplicateTransaction) {
		t.Fatalf("Enroll error = %v, want ErrDuplicateTransaction", err)
	}
	if n := f.count(t, &model.Enrollment{}, "user_id = ?", second.ID); n != 0 {
		t.Fatalf("second enrollment persisted")
	}
	var reloaded model.Coupon
	f.db.First(&reloaded, coupon.ID)
	if reloaded.UsedCount != 1 {
		t.Fatalf("UsedCount = %d, want 1", reloaded.UsedCount)
	}
}

func TestEnrollRejectsUnknownPaymentStatus(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 0)

	_, err := f.enrollments.Enroll(f.ctx, EnrollInput{
		UserID:   student.ID,
		CourseID: course.ID,
		Payment:  &PaymentInput{Method: "card", Status: "settled"},
	})
	if !errors.Is(err, ErrInvalidPaymentStatus) {
		t.Fatalf("Enroll error = %v", err)
	}
}

func TestRedeemStopsAtCap(t *testing.T) {
	f := newLenientFixture(t)
	two := 2
	coupon := f.coupon(t, "cap", model.CouponTypeFixed, 10, func(c *model.Coupon) { c.MaxUses = &two })

	for i, want := range []bool{true, true, false} {
		ok, err := f.coupons.redeem(f.db, coupon.ID)
		if err != nil {
			t.Fatalf("redeem %d: %v", i, err)
		}
		if ok != want {
			t.Fatalf("redeem %d = %v, want %v", i, ok, want)
		}
	}

	var reloaded model.Coupon
	f.db.First(&reloaded, coupon.ID)
	if reloaded.UsedCount != 2 {
		t.Fatalf("UsedCount = %d, want 2", reloaded.UsedCount)
	}
}

func TestUnenrollClearsProgressAndAllowsReEnroll(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 3)

	e, err := f.enrollments.Enroll(f.ctx, EnrollInput{
		UserID:   student.ID,
		CourseID: course.ID,
		Payment:  &PaymentInput{Method: "card", Status: model.PaymentStatusCompleted},
	})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	for _, l := range course.Lessons[:2] {
		if _, err := f.progress.UpdateProgress(f.ctx, UpdateProgressInput{
			UserID: student.ID, CourseID: course.ID, LessonID: l.ID, Percentage: 100, IsCompleted: true,
		}); err != nil {
			t.Fatalf("UpdateProgress: %v", err)
		}
	}

	owner := Actor{UserID: student.ID, Role: model.RoleStudent}
	if err := f.enrollments.Unenroll(f.ctx, e.ID, owner); err != nil {
		t.Fatalf("Unenroll: %v", err)
	}

	if n := f.count(t, &model.Payment{}, "enrollment_id = ?", e.ID); n != 0 {
		t.Fatalf("payments left = %d", n)
	}
	report, err := f.progress.GetCourseProgress(f.ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("GetCourseProgress: %v", err)
	}
	if report.TotalLessons != 3 || report.CompletedLessons != 0 {
		t.Fatalf("progress after unenroll = %d/%d", report.CompletedLessons, report.TotalLessons)
	}

	if _, err := f.enrollments.Enroll(f.ctx, EnrollInput{UserID: student.ID, CourseID: course.ID}); err != nil {
		t.Fatalf("re-enroll: %v", err)
	}
}

func TestUnenrollAuthorization(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	other := f.user(t, model.RoleStudent)
	admin := f.user(t, model.RoleAdmin)
	course := f.course(t, instructor.ID, 1000, 1)
	e := f.enroll(t, student.ID, course.ID)

	err := f.enrollments.Unenroll(f.ctx, e.ID, Actor{UserID: other.ID, Role: model.RoleStudent})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("Unenroll by stranger = %v, want ErrForbidden", err)
	}

	if err := f.enrollments.Unenroll(f.ctx, e.ID, Actor{UserID: admin.ID, Role: model.RoleAdmin}); err != nil {
		t.Fatalf("Unenroll by admin: %v", err)
	}

	err = f.enrollments.Unenroll(f.ctx, e.ID, Actor{UserID: admin.ID, Role: model.RoleAdmin})
	if !errors.Is(err, ErrEnrollmentNotFound) {
		t.Fatalf("second Unenroll = %v, want ErrEnrollmentNotFound", err)
	}
}

func TestMarkCourseCompleted(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	stranger := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 4)
	f.enroll(t, student.ID, course.ID)

	if _, err := f.progress.UpdateProgress(f.ctx, UpdateProgressInput{
		UserID: student.ID, CourseID: course.ID, LessonID: course.Lessons[0].ID, Percentage: 30,
	}); err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}

	report, err := f.enrollments.MarkCourseCompleted(f.ctx, student.ID, course.ID)
	if err != nil {
		t.Fatalf("MarkCourseCompleted: %v", err)
	}
	if report.CompletedLessons != 4 || report.CompletionRate != 100 || report.AvgProgress != 100 {
		t.Fatalf("report = %+v", report)
	}
	if n := f.count(t, &model.Progress{}, "user_id = ? AND course_id = ?", student.ID, course.ID); n != 4 {
		t.Fatalf("progress rows = %d, want 4", n)
	}

	if _, err := f.enrollments.MarkCourseCompleted(f.ctx, stranger.ID, course.ID); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("MarkCourseCompleted stranger = %v, want ErrNotEnrolled", err)
	}
}

func TestEnrollCreatesNotification(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	student := f.user(t, model.RoleStudent)
	course := f.course(t, instructor.ID, 1000, 1)
	f.enroll(t, student.ID, course.ID)

	count, err := f.notifications.GetUnreadCount(f.ctx, student.ID)
	if err != nil {
		t.Fatalf("GetUnreadCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("unread = %d, want 1", count)
	}
}
