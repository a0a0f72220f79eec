package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Booking types and their id prefixes.
const (
	BookingTypeOrder       = "order"
	BookingTypeTestDrive   = "test_drive"
	BookingTypeService     = "service"
	BookingTypeReservation = "reservation"

	PrefixOrder       = "ORD"
	PrefixTestDrive   = "TD"
	PrefixService     = "SVC"
	PrefixReservation = "RES"
)

// Order statuses.
const (
	OrderStatusPlaced     = "placed"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Test drive statuses.
const (
	TestDriveStatusPending   = "pending"
	TestDriveStatusConfirmed = "confirmed"
	TestDriveStatusCompleted = "completed"
	TestDriveStatusCancelled = "cancelled"
)

// Service booking statuses.
const (
	ServiceStatusScheduled       = "scheduled"
	ServiceStatusVehicleReceived = "vehicle-received"
	ServiceStatusInProgress      = "in-progress"
	ServiceStatusCompleted       = "completed"
	ServiceStatusCancelled       = "cancelled"
)

// Car reservation statuses.
const (
	ReservationStatusPending    = "pending"
	ReservationStatusConfirmed  = "confirmed"
	ReservationStatusProcessing = "processing"
	ReservationStatusDelivered  = "delivered"
	ReservationStatusCancelled  = "cancelled"
)

// Reservation payment statuses.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// StatusEntry is one append-only audit record of a status transition.
type StatusEntry struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// StatusHistory is persisted as a JSONB column. It is append-only: the
// last entry always matches the booking's current status.
type StatusHistory []StatusEntry

func (h StatusHistory) Value() (driver.Value, error) {
	return json.Marshal(h)
}

func (h *StatusHistory) Scan(src interface{}) error {
	return scanJSON(src, h)
}

// Contact is the customer identity attached to every booking.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OrderItems is the JSONB-persisted snapshot of a cart's line items at
// checkout time.
type OrderItems []CartLineItem

func (o OrderItems) Value() (driver.Value, error) {
	return json.Marshal(o)
}

func (o *OrderItems) Scan(src interface{}) error {
	return scanJSON(src, o)
}

// Order is a parts purchase created from a cart at checkout.
type Order struct {
	ID            string        `db:"id" json:"id"`
	CustomerName  string        `db:"customer_name" json:"customer_name"`
	CustomerEmail string        `db:"customer_email" json:"customer_email"`
	CustomerPhone string        `db:"customer_phone" json:"customer_phone"`
	Address       string        `db:"address" json:"address"`
	Items         OrderItems    `db:"items" json:"items"`
	Subtotal      int64         `db:"subtotal" json:"subtotal"`
	Discount      int64         `db:"discount" json:"discount"`
	Tax           int64         `db:"tax" json:"tax"`
	Total         int64         `db:"total" json:"total"`
	CouponCode    string        `db:"coupon_code" json:"coupon_code,omitempty"`
	PaymentMethod string        `db:"payment_method" json:"payment_method"`
	Status        string        `db:"status" json:"status"`
	History       StatusHistory `db:"history" json:"history"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
	DeliveredAt   *time.Time    `db:"delivered_at" json:"delivered_at,omitempty"`
}

// TestDrive is a scheduled test drive of a car.
type TestDrive struct {
	ID            string        `db:"id" json:"id"`
	CustomerName  string        `db:"customer_name" json:"customer_name"`
	CustomerEmail string        `db:"customer_email" json:"customer_email"`
	CustomerPhone string        `db:"customer_phone" json:"customer_phone"`
	CarID         string        `db:"car_id" json:"car_id"`
	CarName       string        `db:"car_name" json:"car_name"`
	PreferredDate string        `db:"preferred_date" json:"preferred_date"`
	PreferredTime string        `db:"preferred_time" json:"preferred_time"`
	Status        string        `db:"status" json:"status"`
	History       StatusHistory `db:"history" json:"history"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updated_at"`
	CompletedAt   *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
}

// ServiceBooking is a scheduled maintenance appointment.
type ServiceBooking struct {
	ID              string        `db:"id" json:"id"`
	CustomerName    string        `db:"customer_name" json:"customer_name"`
	CustomerEmail   string        `db:"customer_email" json:"customer_email"`
	CustomerPhone   string        `db:"customer_phone" json:"customer_phone"`
	VehicleModel    string        `db:"vehicle_model" json:"vehicle_model"`
	RegistrationNo  string        `db:"registration_no" json:"registration_no"`
	ServiceTypeID   string        `db:"service_type_id" json:"service_type_id"`
	ServiceTypeName string        `db:"service_type_name" json:"service_type_name"`
	CenterID        string        `db:"center_id" json:"center_id"`
	CenterName      string        `db:"center_name" json:"center_name"`
	ScheduledDate   string        `db:"scheduled_date" json:"scheduled_date"`
	Slot            string        `db:"slot" json:"slot"`
	Status          string        `db:"status" json:"status"`
	History         StatusHistory `db:"history" json:"history"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
	CompletedAt     *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
}

// CarReservation is a paid reservation of a configured car. It carries
// two statuses: the reservation lifecycle and the payment lifecycle.
type CarReservation struct {
	ID              string        `db:"id" json:"id"`
	CustomerName    string        `db:"customer_name" json:"customer_name"`
	CustomerEmail   string        `db:"customer_email" json:"customer_email"`
	CustomerPhone   string        `db:"customer_phone" json:"customer_phone"`
	CarID           string        `db:"car_id" json:"car_id"`
	CarName         string        `db:"car_name" json:"car_name"`
	VariantID       string        `db:"variant_id" json:"variant_id"`
	VariantName     string        `db:"variant_name" json:"variant_name"`
	ColorID         string        `db:"color_id" json:"color_id"`
	ColorName       string        `db:"color_name" json:"color_name"`
	Subtotal        int64         `db:"subtotal" json:"subtotal"`
	Tax             int64         `db:"tax" json:"tax"`
	Total           int64         `db:"total" json:"total"`
	PaymentStatus   string        `db:"payment_status" json:"payment_status"`
	PaymentIntentID string        `db:"payment_intent_id" json:"payment_intent_id,omitempty"`
	Status          string        `db:"status" json:"status"`
	History         StatusHistory `db:"history" json:"history"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
	DeliveredAt     *time.Time    `db:"delivered_at" json:"delivered_at,omitempty"`
}

// OrderStatuses and friends are the per-variant status vocabularies.
// Transitions validate membership only; ordering is not enforced so an
// admin can override a booking into any known state.
var (
	OrderStatuses = []string{
		OrderStatusPlaced, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
	}
	TestDriveStatuses = []string{
		TestDriveStatusPending, TestDriveStatusConfirmed,
		TestDriveStatusCompleted, TestDriveStatusCancelled,
	}
	ServiceStatuses = []string{
		ServiceStatusScheduled, ServiceStatusVehicleReceived,
		ServiceStatusInProgress, ServiceStatusCompleted, ServiceStatusCancelled,
	}
	ReservationStatuses = []string{
		ReservationStatusPending, ReservationStatusConfirmed,
		ReservationStatusProcessing, ReservationStatusDelivered,
		ReservationStatusCancelled,
	}
	PaymentStatuses = []string{
		PaymentStatusPending, PaymentStatusCompleted,
		PaymentStatusFailed, PaymentStatusRefunded,
	}
)

// ValidStatus reports whether status belongs to the given vocabulary.
func ValidStatus(vocabulary []string, status string) bool {
	for _, s := range vocabulary {
		if s == status {
			return true
		}
	}
	return false
}

// IsCompletionStatus reports whether a status is delivered/completed
// class, which stamps the dedicated completion timestamp.
func IsCompletionStatus(status string) bool {
	return status == OrderStatusDelivered || status == TestDriveStatusCompleted
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}
