package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dealership-service/internal/broker"
	"dealership-service/internal/models"
	"dealership-service/internal/util"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// PaymentIntent is the opaque handle returned by the payment gateway.
type PaymentIntent struct {
	IntentID     string `json:"intent_id"`
	ClientSecret string `json:"client_secret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

// PaymentGateway creates payment intents with an external provider. The
// provider's success response is authoritative for marking a booking's
// payment completed.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (*PaymentIntent, error)
}

// HTTPGateway is the production gateway client. Calls run through a
// circuit breaker so a misbehaving provider sheds load fast instead of
// tying up request handlers.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*PaymentIntent]
	logger  *zap.Logger
}

// NewHTTPGateway creates a gateway client for the given base URL.
func NewHTTPGateway(baseURL string) *HTTPGateway {
	breaker := gobreaker.NewCircuitBreaker[*PaymentIntent](gobreaker.Settings{
		Name:    "payment-gateway",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &HTTPGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: breaker,
		logger:  util.GetLogger(),
	}
}

// CreateIntent asks the provider for a payment intent.
func (g *HTTPGateway) CreateIntent(ctx context.Context, amount int64, currency string) (*PaymentIntent, error) {
	start := time.Now()
	defer func() {
		util.PaymentGatewayLatency.Observe(time.Since(start).Seconds())
	}()

	return g.breaker.Execute(func() (*PaymentIntent, error) {
		body, err := json.Marshal(map[string]interface{}{
			"amount":   amount,
			"currency": currency,
		})
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			g.baseURL+"/v1/payment_intents", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := g.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("payment gateway request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
		}

		var intent PaymentIntent
		if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		return &intent, nil
	})
}

// PaymentService coordinates the gateway and reservation payment status.
type PaymentService struct {
	gateway  PaymentGateway
	bookings *BookingService
	events   *broker.EventPublisher
	currency string
	logger   *zap.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(gateway PaymentGateway, bookings *BookingService, events *broker.EventPublisher, currency string) *PaymentService {
	return &PaymentService{
		gateway:  gateway,
		bookings: bookings,
		events:   events,
		currency: currency,
		logger:   util.GetLogger(),
	}
}

// CreateReservationIntent creates a payment intent for a reservation's
// total and attaches the intent id to the record.
func (ps *PaymentService) CreateReservationIntent(ctx context.Context, reservationID string) (*PaymentIntent, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.CreateReservationIntent")
	defer span.End()

	res, err := ps.bookings.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	intent, err := ps.gateway.CreateIntent(ctx, res.Total, ps.currency)
	if err != nil {
		util.PaymentIntentsFailedTotal.Inc()
		return nil, err
	}
	util.PaymentIntentsTotal.Inc()

	if _, err := ps.bookings.TransitionReservationPayment(ctx, reservationID, res.PaymentStatus, intent.IntentID); err != nil {
		ps.logger.Error("Failed to attach intent to reservation",
			zap.String("booking_id", reservationID), zap.Error(err))
	}

	ps.logger.Info("Payment intent created",
		zap.String("booking_id", reservationID),
		zap.String("intent_id", intent.IntentID),
		zap.Int64("amount", res.Total))
	return intent, nil
}

// ConfirmReservationPayment marks a reservation's payment completed,
// which cascades the reservation to confirmed, and publishes the
// payment event.
func (ps *PaymentService) ConfirmReservationPayment(ctx context.Context, reservationID, intentID string) (*models.CarReservation, error) {
	ctx, span := util.StartSpan(ctx, "PaymentService.ConfirmReservationPayment")
	defer span.End()

	res, err := ps.bookings.TransitionReservationPayment(ctx, reservationID, models.PaymentStatusCompleted, intentID)
	if err != nil {
		return nil, err
	}

	if ps.events != nil {
		event := &models.PaymentSucceededEvent{
			BaseEvent:     broker.NewBaseEvent(models.EventTypePaymentSucceeded),
			ReservationID: reservationID,
			IntentID:      intentID,
			Amount:        res.Total,
		}
		if err := ps.events.PublishPaymentSucceeded(ctx, event); err != nil {
			ps.logger.Error("Failed to publish PaymentSucceeded event", zap.Error(err))
		}
	}

	return res, nil
}

// FailReservationPayment marks a reservation's payment failed.
func (ps *PaymentService) FailReservationPayment(ctx context.Context, reservationID, intentID, reason string) (*models.CarReservation, error) {
	res, err := ps.bookings.TransitionReservationPayment(ctx, reservationID, models.PaymentStatusFailed, intentID)
	if err != nil {
		return nil, err
	}

	ps.logger.Warn("Reservation payment failed",
		zap.String("booking_id", reservationID),
		zap.String("reason", reason))

	if ps.events != nil {
		event := &models.PaymentFailedEvent{
			BaseEvent:     broker.NewBaseEvent(models.EventTypePaymentFailed),
			ReservationID: reservationID,
			IntentID:      intentID,
			Reason:        reason,
		}
		if err := ps.events.PublishPaymentFailed(ctx, event); err != nil {
			ps.logger.Error("Failed to publish PaymentFailed event", zap.Error(err))
		}
	}

	return res, nil
}
