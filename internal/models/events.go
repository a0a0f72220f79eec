package models

import "time"

// Event types published to the booking-events topic.
const (
	EventTypeOrderPlaced          = "ORDER_PLACED"
	EventTypeBookingCreated       = "BOOKING_CREATED"
	EventTypeBookingStatusChanged = "BOOKING_STATUS_CHANGED"
	EventTypePaymentSucceeded     = "PAYMENT_SUCCEEDED"
	EventTypePaymentFailed        = "PAYMENT_FAILED"
)

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent is published when a parts order is created at checkout.
type OrderPlacedEvent struct {
	BaseEvent
	OrderID       string         `json:"order_id"`
	CustomerEmail string         `json:"customer_email"`
	Total         int64          `json:"total"`
	Items         []CartLineItem `json:"items"`
}

// BookingCreatedEvent is published for test drives, service bookings and
// car reservations.
type BookingCreatedEvent struct {
	BaseEvent
	BookingID     string `json:"booking_id"`
	BookingType   string `json:"booking_type"`
	CustomerEmail string `json:"customer_email"`
	Status        string `json:"status"`
}

// BookingStatusChangedEvent is published on every status transition.
type BookingStatusChangedEvent struct {
	BaseEvent
	BookingID   string `json:"booking_id"`
	BookingType string `json:"booking_type"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
	Note        string `json:"note,omitempty"`
}

// PaymentSucceededEvent is published when the payment gateway confirms an
// intent for a car reservation.
type PaymentSucceededEvent struct {
	BaseEvent
	ReservationID string `json:"reservation_id"`
	IntentID      string `json:"intent_id"`
	Amount        int64  `json:"amount"`
}

// PaymentFailedEvent is published when the gateway declines an intent.
type PaymentFailedEvent struct {
	BaseEvent
	ReservationID string `json:"reservation_id"`
	IntentID      string `json:"intent_id"`
	Reason        string `json:"reason"`
}
