package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/sahilchouksey/learnhub-api/config"
	"github.com/sahilchouksey/learnhub-api/database/dbtest"
	"github.com/sahilchouksey/learnhub-api/model"
	"gorm.io/gorm"
)

var fixtureSeq atomic.Int64

type fixture struct {
	ctx           context.Context
	db            *gorm.DB
	catalog       *CatalogService
	coupons       *CouponService
	progress      *ProgressService
	enrollments   *EnrollmentService
	payments      *PaymentService
	notifications *NotificationService
}

func newFixture(t *testing.T, couponMode string) *fixture {
	t.Helper()

	db := dbtest.New(t)
	f := &fixture{ctx: context.Background(), db: db}
	f.notifications = NewNotificationService(db)
	f.catalog = NewCatalogService(db, nil, nil)
	f.coupons = NewCouponService(db, f.catalog, nil)
	f.progress = NewProgressService(db, f.catalog, nil)
	f.enrollments = NewEnrollmentService(db, f.catalog, f.coupons, f.progress, EnrollmentDeps{
		Notifications: f.notifications,
		CouponMode:    couponMode,
	}, nil)
	f.payments = NewPaymentService(db, f.enrollments, f.notifications, "webhook-secret", nil)
	return f
}

func newLenientFixture(t *testing.T) *fixture {
	return newFixture(t, config.CouponModeLenient)
}

func (f *fixture) user(t *testing.T, role string) model.User {
	t.Helper()
	n := fixtureSeq.Add(1)
	u := model.User{
		Email:        fmt.Sprintf("user%d@example.com", n),
		Username:     fmt.Sprintf("user%d", n),
		PasswordHash: "x",
		Name:         fmt.Sprintf("User %d", n),
		Role:         role,
		Status:       model.UserStatusActive,
	}
	if err := f.db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// course creates a published course with the given number of lessons.
func (f *fixture) course(t *testing.T, instructorID uint, price int64, lessons int) model.Course {
	t.Helper()
	n := fixtureSeq.Add(1)
	c := model.Course{
		InstructorID: instructorID,
		Title:        fmt.Sprintf("Course %d", n),
		Slug:         fmt.Sprintf("course-%d", n),
		Price:        price,
		Currency:     "INR",
		IsPublished:  true,
	}
	if err := f.db.Create(&c).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	for i := 0; i < lessons; i++ {
		l := model.Lesson{CourseID: c.ID, Title: fmt.Sprintf("Lesson %d", i+1), Position: i + 1}
		if err := f.db.Create(&l).Error; err != nil {
			t.Fatalf("create lesson: %v", err)
		}
		c.Lessons = append(c.Lessons, l)
	}
	return c
}

func (f *fixture) coupon(t *testing.T, code string, typ model.CouponType, value int64, mutate func(*model.Coupon)) model.Coupon {
	t.Helper()
	c := model.Coupon{Code: NormalizeCouponCode(code), Type: typ, Value: value, IsActive: true}
	if mutate != nil {
		mutate(&c)
	}
	if err := f.db.Create(&c).Error; err != nil {
		t.Fatalf("create coupon: %v", err)
	}
	return c
}

func (f *fixture) enroll(t *testing.T, userID, courseID uint) model.Enrollment {
	t.Helper()
	e, err := f.enrollments.Enroll(f.ctx, EnrollInput{UserID: userID, CourseID: courseID})
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	return *e
}

func (f *fixture) count(t *testing.T, m interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(m).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}
