package models

import (
	"strings"
	"time"
)

// Car is a catalog entry for a vehicle. Immutable after load.
type Car struct {
	ID       string       `db:"id" json:"id"`
	Brand    string       `db:"brand" json:"brand"`
	Name     string       `db:"name" json:"name"`
	Category string       `db:"category" json:"category"`
	Price    int64        `db:"price" json:"price"`
	Variants []CarVariant `json:"variants"`
	Colors   []CarColor   `json:"colors"`
	Features []string     `json:"features"`
}

// CarVariant is one trim level of a car with its own price.
type CarVariant struct {
	ID    string `db:"id" json:"id"`
	CarID string `db:"car_id" json:"-"`
	Name  string `db:"name" json:"name"`
	Price int64  `db:"price" json:"price"`
}

// CarColor is a paint option; Price may be 0 for standard colors.
type CarColor struct {
	ID    string `db:"id" json:"id"`
	CarID string `db:"car_id" json:"-"`
	Name  string `db:"name" json:"name"`
	Price int64  `db:"price" json:"price"`
}

// Part is a catalog entry for a spare part. Immutable after load.
type Part struct {
	ID             string   `db:"id" json:"id"`
	Category       string   `db:"category" json:"category"`
	PartNumber     string   `db:"part_number" json:"part_number"`
	Name           string   `db:"name" json:"name"`
	Price          int64    `db:"price" json:"price"`
	MRP            int64    `db:"mrp" json:"mrp"`
	Stock          int      `db:"stock" json:"stock"`
	CompatibleCars []string `json:"compatible_cars"`
}

// ServiceType is a bookable maintenance service.
type ServiceType struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Price       int64  `db:"price" json:"price"`
	DurationMin int    `db:"duration_min" json:"duration_min"`
}

// ServiceCenter is a physical location where services are performed.
type ServiceCenter struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	City    string `db:"city" json:"city"`
	Address string `db:"address" json:"address"`
	Phone   string `db:"phone" json:"phone"`
}

// Discount types for coupons.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Coupon is a discount rule. Codes are unique case-insensitively.
type Coupon struct {
	Code         string    `db:"code" json:"code"`
	Description  string    `db:"description" json:"description"`
	DiscountType string    `db:"discount_type" json:"discount_type"`
	Value        int64     `db:"value" json:"value"`
	MinOrder     int64     `db:"min_order" json:"min_order"`
	MaxDiscount  int64     `db:"max_discount" json:"max_discount"`
	ValidTill    time.Time `db:"valid_till" json:"valid_till"`
	ApplicableOn []string  `json:"applicable_on"`
}

// IsExpired checks the coupon against now at date granularity: the coupon
// stays valid through the whole of its expiry day.
func (c *Coupon) IsExpired(now time.Time) bool {
	endOfDay := time.Date(
		c.ValidTill.Year(), c.ValidTill.Month(), c.ValidTill.Day(),
		23, 59, 59, 0, c.ValidTill.Location())
	return now.After(endOfDay)
}

// VinRecord maps a VIN to a sold vehicle for service lookups.
type VinRecord struct {
	VIN          string    `db:"vin" json:"vin"`
	CarID        string    `db:"car_id" json:"car_id"`
	Model        string    `db:"model" json:"model"`
	Year         int       `db:"year" json:"year"`
	OwnerName    string    `db:"owner_name" json:"owner_name"`
	PurchaseDate time.Time `db:"purchase_date" json:"purchase_date"`
}

// NormalizeCouponCode canonicalizes a coupon code for lookup.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
