package service

import (
	"math"

	"dealership-service/internal/apperr"
	"dealership-service/internal/models"

	"github.com/shopspring/decimal"
)

// Two-tier tax design: car acquisition carries the luxury-goods rate,
// parts/service carts carry GST.
var (
	luxuryTaxRate = decimal.NewFromFloat(0.28)
	gstRate       = decimal.NewFromFloat(0.18)
)

// CarPriceBreakdown is the on-road price computation for a configured car.
type CarPriceBreakdown struct {
	CarID            string `json:"car_id"`
	CarName          string `json:"car_name"`
	VariantID        string `json:"variant_id"`
	VariantName      string `json:"variant_name"`
	ColorID          string `json:"color_id"`
	ColorName        string `json:"color_name"`
	BasePrice        int64  `json:"base_price"`
	ColorPrice       int64  `json:"color_price"`
	AccessoriesPrice int64  `json:"accessories_price"`
	Subtotal         int64  `json:"subtotal"`
	Tax              int64  `json:"tax"`
	Total            int64  `json:"total"`
}

// EMIBreakdown is the amortized-loan computation result.
type EMIBreakdown struct {
	LoanAmount    int64 `json:"loan_amount"`
	EMI           int64 `json:"emi"`
	TotalAmount   int64 `json:"total_amount"`
	TotalInterest int64 `json:"total_interest"`
}

// CalculateCarPrice resolves the variant and color of a car and computes
// the price breakdown with the 28% luxury tax. Accessories are an
// extension point, currently always 0.
func CalculateCarPrice(car *models.Car, variantID, colorID string) (*CarPriceBreakdown, error) {
	var variant *models.CarVariant
	for i := range car.Variants {
		if car.Variants[i].ID == variantID {
			variant = &car.Variants[i]
			break
		}
	}
	if variant == nil {
		return nil, apperr.NotFound("variant not found: %s", variantID)
	}

	var color *models.CarColor
	for i := range car.Colors {
		if car.Colors[i].ID == colorID {
			color = &car.Colors[i]
			break
		}
	}
	if color == nil {
		return nil, apperr.NotFound("color not found: %s", colorID)
	}

	subtotal := variant.Price + color.Price
	tax := roundHalfUp(decimal.NewFromInt(subtotal).Mul(luxuryTaxRate))

	return &CarPriceBreakdown{
		CarID:            car.ID,
		CarName:          car.Name,
		VariantID:        variant.ID,
		VariantName:      variant.Name,
		ColorID:          color.ID,
		ColorName:        color.Name,
		BasePrice:        variant.Price,
		ColorPrice:       color.Price,
		AccessoriesPrice: 0,
		Subtotal:         subtotal,
		Tax:              tax,
		Total:            subtotal + tax,
	}, nil
}

// CalculateEMI computes a standard amortized monthly installment.
// A zero interest rate degrades to straight division.
func CalculateEMI(principal int64, tenureMonths int, annualRatePercent float64, downPayment int64) (*EMIBreakdown, error) {
	loanAmount := principal - downPayment
	if loanAmount <= 0 {
		return nil, apperr.InvalidInput("down payment must be less than the vehicle price")
	}
	if tenureMonths <= 0 {
		return nil, apperr.InvalidInput("tenure must be at least one month")
	}

	monthlyRate := annualRatePercent / 12 / 100

	var emi int64
	if monthlyRate == 0 {
		emi = roundHalfUp(decimal.NewFromInt(loanAmount).Div(decimal.NewFromInt(int64(tenureMonths))))
	} else {
		factor := math.Pow(1+monthlyRate, float64(tenureMonths))
		raw := float64(loanAmount) * monthlyRate * factor / (factor - 1)
		emi = roundHalfUp(decimal.NewFromFloat(raw))
	}

	totalAmount := emi * int64(tenureMonths)
	return &EMIBreakdown{
		LoanAmount:    loanAmount,
		EMI:           emi,
		TotalAmount:   totalAmount,
		TotalInterest: totalAmount - loanAmount,
	}, nil
}

// CalculateCartTotals computes the cart money breakdown with the 18% GST
// rate. The discount applies only while the attached coupon still passes
// its validity predicate against the current subtotal; a stale coupon
// contributes nothing but is not detached here, detachment only happens
// at apply time. Calling this twice without mutation yields identical
// totals.
func CalculateCartTotals(cart *models.Cart) models.CartTotals {
	subtotal := cart.Subtotal()

	var discount int64
	couponCode := ""
	if cart.Coupon != nil {
		couponCode = cart.Coupon.Code
		if couponSatisfied(cart.Coupon, subtotal) {
			discount = couponDiscount(cart.Coupon, subtotal)
		}
	}

	taxable := subtotal - discount
	tax := roundHalfUp(decimal.NewFromInt(taxable).Mul(gstRate))

	return models.CartTotals{
		Subtotal:   subtotal,
		Discount:   discount,
		Tax:        tax,
		Total:      taxable + tax,
		CouponCode: couponCode,
	}
}

// couponSatisfied is the validity predicate re-checked at totals time:
// not expired, minimum met.
func couponSatisfied(coupon *models.Coupon, subtotal int64) bool {
	return !coupon.IsExpired(nowFunc()) && subtotal >= coupon.MinOrder
}

// couponDiscount computes the capped discount amount; it never exceeds
// the subtotal.
func couponDiscount(coupon *models.Coupon, subtotal int64) int64 {
	var discount int64
	switch coupon.DiscountType {
	case models.DiscountTypePercentage:
		pct := decimal.NewFromInt(subtotal).
			Mul(decimal.NewFromInt(coupon.Value)).
			Div(decimal.NewFromInt(100))
		discount = roundHalfUp(pct)
	case models.DiscountTypeFixed:
		discount = coupon.Value
	default:
		return 0
	}

	if coupon.MaxDiscount > 0 && discount > coupon.MaxDiscount {
		discount = coupon.MaxDiscount
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}

// roundHalfUp rounds to the nearest integer currency unit, halves away
// from zero.
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
