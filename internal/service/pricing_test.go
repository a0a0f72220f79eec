package service

import (
	"testing"
	"time"

	"dealership-service/internal/apperr"
	"dealership-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCar() *models.Car {
	return &models.Car{
		ID:   "car-1",
		Name: "Aurora GT",
		Variants: []models.CarVariant{
			{ID: "v-base", Name: "Base", Price: 1199000},
			{ID: "v-sport", Name: "Sport", Price: 1450000},
		},
		Colors: []models.CarColor{
			{ID: "c-white", Name: "Pearl White", Price: 0},
			{ID: "c-red", Name: "Crimson Red", Price: 25000},
		},
	}
}

func TestCalculateCarPrice(t *testing.T) {
	breakdown, err := CalculateCarPrice(testCar(), "v-base", "c-white")
	require.NoError(t, err)

	assert.Equal(t, int64(1199000), breakdown.BasePrice)
	assert.Equal(t, int64(0), breakdown.ColorPrice)
	assert.Equal(t, int64(0), breakdown.AccessoriesPrice)
	assert.Equal(t, int64(1199000), breakdown.Subtotal)
	assert.Equal(t, int64(335720), breakdown.Tax) // 28% luxury rate
	assert.Equal(t, int64(1534720), breakdown.Total)
	assert.Equal(t, "Base", breakdown.VariantName)
	assert.Equal(t, "Pearl White", breakdown.ColorName)
}

func TestCalculateCarPricePaidColor(t *testing.T) {
	breakdown, err := CalculateCarPrice(testCar(), "v-sport", "c-red")
	require.NoError(t, err)

	assert.Equal(t, int64(1475000), breakdown.Subtotal)
	assert.Equal(t, int64(413000), breakdown.Tax)
	assert.Equal(t, int64(1888000), breakdown.Total)
}

func TestCalculateCarPriceUnknownVariant(t *testing.T) {
	_, err := CalculateCarPrice(testCar(), "v-missing", "c-white")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = CalculateCarPrice(testCar(), "v-base", "c-missing")
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestCalculateEMIBaseline(t *testing.T) {
	breakdown, err := CalculateEMI(500000, 60, 8.5, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(500000), breakdown.LoanAmount)
	assert.Equal(t, int64(10258), breakdown.EMI)
	assert.Equal(t, int64(10258*60), breakdown.TotalAmount)
	assert.Equal(t, breakdown.TotalAmount-breakdown.LoanAmount, breakdown.TotalInterest)
}

func TestCalculateEMIZeroRate(t *testing.T) {
	breakdown, err := CalculateEMI(120000, 12, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(10000), breakdown.EMI)
	assert.Equal(t, int64(120000), breakdown.TotalAmount)
	assert.Equal(t, int64(0), breakdown.TotalInterest)
}

func TestCalculateEMIInvalidInput(t *testing.T) {
	_, err := CalculateEMI(500000, 60, 8.5, 500000)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidInput))

	_, err = CalculateEMI(500000, 60, 8.5, 600000)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidInput))

	_, err = CalculateEMI(500000, 0, 8.5, 0)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidInput))
}

func cartWith(items []models.CartLineItem, coupon *models.Coupon) *models.Cart {
	return &models.Cart{SessionID: "s1", Items: items, Coupon: coupon}
}

func TestCalculateCartTotalsNoCoupon(t *testing.T) {
	cart := cartWith([]models.CartLineItem{
		{ID: "l1", Price: 1000, Quantity: 2},
		{ID: "l2", Price: 500, Quantity: 1},
	}, nil)

	totals := CalculateCartTotals(cart)

	assert.Equal(t, int64(2500), totals.Subtotal)
	assert.Equal(t, int64(0), totals.Discount)
	assert.Equal(t, int64(450), totals.Tax) // 18% GST
	assert.Equal(t, int64(2950), totals.Total)
}

func TestCalculateCartTotalsIdempotent(t *testing.T) {
	cart := cartWith([]models.CartLineItem{
		{ID: "l1", Price: 333, Quantity: 3},
	}, nil)

	first := CalculateCartTotals(cart)
	second := CalculateCartTotals(cart)
	assert.Equal(t, first, second)
}

func TestCalculateCartTotalsPercentageCoupon(t *testing.T) {
	coupon := &models.Coupon{
		Code:         "SAVE10",
		DiscountType: models.DiscountTypePercentage,
		Value:        10,
		MinOrder:     1000,
		MaxDiscount:  500,
		ValidTill:    time.Now().AddDate(0, 1, 0),
	}
	cart := cartWith([]models.CartLineItem{
		{ID: "l1", Price: 2000, Quantity: 1},
	}, coupon)

	totals := CalculateCartTotals(cart)

	assert.Equal(t, int64(200), totals.Discount) // 10% of 2000, under cap
	assert.Equal(t, int64(324), totals.Tax)      // 18% of 1800
	assert.Equal(t, int64(2124), totals.Total)
	assert.Equal(t, "SAVE10", totals.CouponCode)
}

func TestCalculateCartTotalsDiscountCap(t *testing.T) {
	coupon := &models.Coupon{
		Code:         "SAVE10",
		DiscountType: models.DiscountTypePercentage,
		Value:        10,
		MaxDiscount:  500,
		ValidTill:    time.Now().AddDate(0, 1, 0),
	}
	cart := cartWith([]models.CartLineItem{
		{ID: "l1", Price: 10000, Quantity: 1},
	}, coupon)

	totals := CalculateCartTotals(cart)
	assert.Equal(t, int64(500), totals.Discount) // capped, not 1000
}

func TestCalculateCartTotalsFixedCouponNeverExceedsSubtotal(t *testing.T) {
	coupon := &models.Coupon{
		Code:         "FLAT500",
		DiscountType: models.DiscountTypeFixed,
		Value:        500,
		MaxDiscount:  500,
		ValidTill:    time.Now().AddDate(0, 1, 0),
	}
	cart := cartWith([]models.CartLineItem{
		{ID: "l1", Price: 300, Quantity: 1},
	}, coupon)

	totals := CalculateCartTotals(cart)
	assert.Equal(t, int64(300), totals.Discount)
	assert.Equal(t, int64(0), totals.Total-totals.Tax)
}

func TestCalculateCartTotalsStaleCouponContributesNothing(t *testing.T) {
	// The coupon was applied when the cart was larger; after items were
	// removed the minimum no longer holds. Discount drops to zero but
	// the coupon stays attached.
	coupon := &models.Coupon{
		Code:         "BIG",
		DiscountType: models.DiscountTypeFixed,
		Value:        500,
		MinOrder:     5000,
		MaxDiscount:  500,
		ValidTill:    time.Now().AddDate(0, 1, 0),
	}
	cart := cartWith([]models.CartLineItem{
		{ID: "l1", Price: 1000, Quantity: 1},
	}, coupon)

	totals := CalculateCartTotals(cart)
	assert.Equal(t, int64(0), totals.Discount)
	assert.Equal(t, "BIG", totals.CouponCode)
	assert.NotNil(t, cart.Coupon)
}

func TestRoundHalfUp(t *testing.T) {
	// 28% of 5 is 1.4, 28% of 55 is 15.4, 18% of 25 is 4.5: the half
	// case rounds away from zero.
	cart := cartWith([]models.CartLineItem{{ID: "l1", Price: 25, Quantity: 1}}, nil)
	totals := CalculateCartTotals(cart)
	assert.Equal(t, int64(5), totals.Tax)
}
