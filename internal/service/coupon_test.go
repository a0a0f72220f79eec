package service

import (
	"testing"
	"time"

	"dealership-service/internal/apperr"
	"dealership-service/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateCouponExpired(t *testing.T) {
	coupon := &models.Coupon{
		Code:      "OLD",
		ValidTill: time.Now().AddDate(0, 0, -1),
	}

	// Expiry wins regardless of subtotal.
	for _, subtotal := range []int64{0, 100, 1000000} {
		err := ValidateCoupon(coupon, subtotal)
		assert.True(t, apperr.Is(err, apperr.CodeExpired), "subtotal=%d", subtotal)
	}
}

func TestValidateCouponValidThroughExpiryDay(t *testing.T) {
	restore := nowFunc
	defer func() { nowFunc = restore }()

	expiry := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	coupon := &models.Coupon{Code: "EDGE", ValidTill: expiry}

	// Late on the expiry day the coupon still works; the next morning
	// it does not.
	nowFunc = func() time.Time { return time.Date(2026, 3, 15, 22, 0, 0, 0, time.UTC) }
	assert.NoError(t, ValidateCoupon(coupon, 1000))

	nowFunc = func() time.Time { return time.Date(2026, 3, 16, 1, 0, 0, 0, time.UTC) }
	assert.True(t, apperr.Is(ValidateCoupon(coupon, 1000), apperr.CodeExpired))
}

func TestValidateCouponMinimumNotMet(t *testing.T) {
	coupon := &models.Coupon{
		Code:      "BIG",
		MinOrder:  5000,
		ValidTill: time.Now().AddDate(0, 1, 0),
	}

	err := ValidateCoupon(coupon, 4999)
	assert.True(t, apperr.Is(err, apperr.CodeMinimumNotMet))
	assert.Contains(t, err.Error(), "5000")

	assert.NoError(t, ValidateCoupon(coupon, 5000))
}

func TestValidateCouponIgnoresItemTypes(t *testing.T) {
	// The applicable item-type set is stored but never matched against
	// the cart contents; the predicate only checks expiry and minimum.
	coupon := &models.Coupon{
		Code:         "PARTSONLY",
		ApplicableOn: []string{models.ItemTypePart},
		ValidTill:    time.Now().AddDate(0, 1, 0),
	}
	assert.NoError(t, ValidateCoupon(coupon, 100))
}
