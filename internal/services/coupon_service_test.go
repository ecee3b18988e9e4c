package services

import (
	"testing"
	"time"

	"affiliate-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestComputeDiscount(t *testing.T) {
	assert.Equal(t, 10000.0, ComputeDiscount(models.DiscountTypePercentage, 10, 100000))
	assert.Equal(t, 134700.0, ComputeDiscount(models.DiscountTypePercentage, 30, 449000))
	assert.Equal(t, 5000.0, ComputeDiscount(models.DiscountTypeFlat, 5000, 100000))

	// Flat discounts are capped at the base price.
	assert.Equal(t, 20000.0, ComputeDiscount(models.DiscountTypeFlat, 50000, 20000))

	// Unknown types yield no discount.
	assert.Equal(t, 0.0, ComputeDiscount("BOGUS", 10, 100000))
}

func TestValidateCoupon(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCouponService(testDB)

	past := time.Now().Add(-time.Hour)
	testDB.Create(&models.Coupon{Code: "GOOD", DiscountType: models.DiscountTypePercentage, DiscountValue: 10, IsActive: true})
	testDB.Create(&models.Coupon{Code: "OLD", DiscountType: models.DiscountTypePercentage, DiscountValue: 10, IsActive: true, ExpiresAt: &past})
	testDB.Create(&models.Coupon{Code: "USED", DiscountType: models.DiscountTypePercentage, DiscountValue: 10, IsActive: true, UsageLimit: 1, UsageCount: 1})
	testDB.Create(&models.Coupon{Code: "OFF", DiscountType: models.DiscountTypePercentage, DiscountValue: 10, IsActive: false})

	quote, err := svc.Validate("GOOD", 100000)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	assert.Equal(t, 10000.0, quote.DiscountAmount)
	assert.Equal(t, 90000.0, quote.FinalAmount)

	_, err = svc.Validate("OLD", 100000)
	assert.ErrorIs(t, err, ErrCouponExpired)

	_, err = svc.Validate("USED", 100000)
	assert.ErrorIs(t, err, ErrCouponLimitReached)

	_, err = svc.Validate("OFF", 100000)
	assert.ErrorIs(t, err, ErrCouponNotFound)

	_, err = svc.Validate("MISSING", 100000)
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestConsumeRespectsUsageLimit(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCouponService(testDB)
	coupon := models.Coupon{Code: "ONCE", DiscountType: models.DiscountTypeFlat, DiscountValue: 500, UsageLimit: 1, IsActive: true}
	testDB.Create(&coupon)

	if err := svc.Consume(testDB, coupon.ID); err != nil {
		t.Fatalf("First consume failed: %v", err)
	}

	err := svc.Consume(testDB, coupon.ID)
	assert.ErrorIs(t, err, ErrCouponLimitReached)

	var reloaded models.Coupon
	testDB.First(&reloaded, coupon.ID)
	assert.Equal(t, 1, reloaded.UsageCount)
}

func TestConsumeUnlimitedCoupon(t *testing.T) {
	if testDB == nil {
		t.Skip("Database not configured")
	}
	defer cleanup()

	svc := NewCouponService(testDB)
	coupon := models.Coupon{Code: "FOREVER", DiscountType: models.DiscountTypeFlat, DiscountValue: 500, UsageLimit: 0, IsActive: true}
	testDB.Create(&coupon)

	for i := 0; i < 3; i++ {
		if err := svc.Consume(testDB, coupon.ID); err != nil {
			t.Fatalf("Consume %d failed: %v", i, err)
		}
	}

	var reloaded models.Coupon
	testDB.First(&reloaded, coupon.ID)
	assert.Equal(t, 3, reloaded.UsageCount)
}
