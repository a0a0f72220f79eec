package service

import (
	"time"

	"dealership-service/internal/apperr"
	"dealership-service/internal/models"
)

// nowFunc is swapped out in tests that exercise expiry boundaries.
var nowFunc = time.Now

// ValidateCoupon checks a coupon against a cart's pre-discount subtotal:
// expiry at date granularity, then the minimum-order threshold. The
// coupon's applicable item-type set is deliberately not checked against
// the cart's contents; any valid, unexpired, minimum-satisfying coupon
// is accepted regardless of item mix.
func ValidateCoupon(coupon *models.Coupon, subtotal int64) error {
	if coupon.IsExpired(nowFunc()) {
		return apperr.Expired("coupon %s expired on %s",
			coupon.Code, coupon.ValidTill.Format("2006-01-02"))
	}
	if subtotal < coupon.MinOrder {
		return apperr.MinimumNotMet("coupon %s requires a minimum order of %d",
			coupon.Code, coupon.MinOrder)
	}
	return nil
}
