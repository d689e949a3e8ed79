package services

import (
	"errors"
	"testing"
	"time"

	"github.com/sahilchouksey/learnhub-api/model"
	"github.com/sahilchouksey/learnhub-api/utils/apierr"
)

func TestQuote(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	course := f.course(t, instructor.ID, 100000, 0)
	other := f.course(t, instructor.ID, 100000, 0)
	past := time.Now().Add(-time.Hour)

	f.coupon(t, "TWENTY", model.CouponTypePercentage, 20, nil)
	f.coupon(t, "GONE", model.CouponTypeFixed, 100, func(c *model.Coupon) { c.ValidUntil = &past })
	f.coupon(t, "ELSEWHERE", model.CouponTypeFixed, 100, func(c *model.Coupon) { c.CourseID = &other.ID })

	tests := []struct {
		code       string
		wantTotal  int64
		wantReason string
	}{
		{"twenty", 80000, ""},
		{"gone", 100000, "coupon has expired"},
		{"elsewhere", 100000, "coupon does not apply to this course"},
		{"missing", 100000, "coupon not found"},
		{"", 100000, ""},
	}

	for _, tt := range tests {
		q, err := f.coupons.Quote(f.ctx, tt.code, course.ID)
		if err != nil {
			t.Fatalf("Quote(%q): %v", tt.code, err)
		}
		if q.Total != tt.wantTotal || q.Reason != tt.wantReason {
			t.Errorf("Quote(%q) = total %d reason %q, want %d %q", tt.code, q.Total, q.Reason, tt.wantTotal, tt.wantReason)
		}
		if q.Applied != (tt.wantTotal != 100000) {
			t.Errorf("Quote(%q).Applied = %v", tt.code, q.Applied)
		}
	}
}

func TestQuoteUsesSalePrice(t *testing.T) {
	f := newLenientFixture(t)
	instructor := f.user(t, model.RoleInstructor)
	course := f.course(t, instructor.ID, 100000, 0)
	f.db.Model(&course).Update("sale_price", 50000)
	f.coupon(t, "HALF", model.CouponTypePercentage, 50, nil)

	q, err := f.coupons.Quote(f.ctx, "HALF", course.ID)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if q.OriginalPrice != 50000 || q.Discount != 25000 || q.Total != 25000 {
		t.Fatalf("quote = %+v", q)
	}
}

func TestCreateCouponValidation(t *testing.T) {
	f := newLenientFixture(t)
	now := time.Now()
	earlier := now.Add(-time.Hour)

	tests := []struct {
		name  string
		in    CouponInput
		field string
	}{
		{"percentage over 100", CouponInput{Code: "BIG", Type: model.CouponTypePercentage, Value: 150}, "value"},
		{"window reversed", CouponInput{Code: "BACK", Type: model.CouponTypeFixed, Value: 10, ValidFrom: &now, ValidUntil: &earlier}, "valid_until"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.coupons.CreateCoupon(f.ctx, tt.in)
			apiErr, ok := apierr.As(err)
			if !ok || len(apiErr.Fields) == 0 || apiErr.Fields[0].Field != tt.field {
				t.Fatalf("CreateCoupon error = %v, want field %s", err, tt.field)
			}
		})
	}
}

func TestCouponCRUD(t *testing.T) {
	f := newLenientFixture(t)

	created, err := f.coupons.CreateCoupon(f.ctx, CouponInput{Code: " launch10 ", Type: model.CouponTypePercentage, Value: 10})
	if err != nil {
		t.Fatalf("CreateCoupon: %v", err)
	}
	if created.Code != "LAUNCH10" || !created.IsActive {
		t.Fatalf("coupon = %+v", created)
	}
	if _, err := f.coupons.CreateCoupon(f.ctx, CouponInput{Code: "Launch10", Type: model.CouponTypeFixed, Value: 5}); !errors.Is(err, ErrCouponCodeTaken) {
		t.Fatalf("duplicate code = %v", err)
	}

	inactive := false
	maxUses := 5
	updated, err := f.coupons.UpdateCoupon(f.ctx, created.ID, CouponPatch{IsActive: &inactive, MaxUses: &maxUses})
	if err != nil {
		t.Fatalf("UpdateCoupon: %v", err)
	}
	if updated.IsActive || updated.MaxUses == nil || *updated.MaxUses != 5 || updated.Value != 10 {
		t.Fatalf("updated = %+v", updated)
	}

	updated, err = f.coupons.UpdateCoupon(f.ctx, created.ID, CouponPatch{ClearMaxUses: true})
	if err != nil || updated.MaxUses != nil {
		t.Fatalf("clear max uses = %+v, %v", updated, err)
	}

	if err := f.coupons.DeleteCoupon(f.ctx, created.ID); err != nil {
		t.Fatalf("DeleteCoupon: %v", err)
	}
	if _, err := f.coupons.GetCoupon(f.ctx, created.ID); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("GetCoupon after delete = %v", err)
	}
}

func TestDeactivateExpired(t *testing.T) {
	f := newLenientFixture(t)
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	expired := f.coupon(t, "OLD", model.CouponTypeFixed, 10, func(c *model.Coupon) { c.ValidUntil = &past })
	live := f.coupon(t, "NEW", model.CouponTypeFixed, 10, func(c *model.Coupon) { c.ValidUntil = &future })

	n, err := f.coupons.DeactivateExpired(f.ctx)
	if err != nil || n != 1 {
		t.Fatalf("DeactivateExpired = %d, %v", n, err)
	}

	var c model.Coupon
	if err := f.db.First(&c, expired.ID).Error; err != nil {
		t.Fatalf("load expired coupon: %v", err)
	}
	if c.IsActive {
		t.Fatalf("expired coupon still active")
	}
	var current model.Coupon
	if err := f.db.First(&current, live.ID).Error; err != nil {
		t.Fatalf("load live coupon: %v", err)
	}
	if !current.IsActive {
		t.Fatalf("live coupon deactivated")
	}
}
