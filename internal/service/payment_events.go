package service

import (
	"context"
	"fmt"

	"dealership-service/internal/models"
	"dealership-service/internal/store"
	"dealership-service/internal/util"

	"go.uber.org/zap"
)

// PaymentEventProcessor applies payment events from the booking topic to
// reservation records. The HTTP confirm path and the event path can both
// deliver the same outcome, so every event is checked against the
// processed-events table and the record's current payment status before
// it is applied.
type PaymentEventProcessor struct {
	store    *store.Store
	bookings *BookingService
	logger   *zap.Logger
}

// NewPaymentEventProcessor creates a new payment event processor.
func NewPaymentEventProcessor(st *store.Store, bookings *BookingService) *PaymentEventProcessor {
	return &PaymentEventProcessor{
		store:    st,
		bookings: bookings,
		logger:   util.GetLogger(),
	}
}

// HandlePaymentSucceeded marks the reservation's payment completed.
func (p *PaymentEventProcessor) HandlePaymentSucceeded(ctx context.Context, event *models.PaymentSucceededEvent) error {
	ctx, span := util.StartSpan(ctx, "PaymentEventProcessor.HandlePaymentSucceeded")
	defer span.End()

	processed, err := p.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		p.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	res, err := p.bookings.GetReservation(ctx, event.ReservationID)
	if err != nil {
		return err
	}

	if res.PaymentStatus != models.PaymentStatusCompleted {
		if _, err := p.bookings.TransitionReservationPayment(ctx, event.ReservationID, models.PaymentStatusCompleted, event.IntentID); err != nil {
			return err
		}
	}

	if err := p.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		p.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	p.logger.Info("Payment success applied", zap.String("booking_id", event.ReservationID))
	return nil
}

// HandlePaymentFailed marks the reservation's payment failed.
func (p *PaymentEventProcessor) HandlePaymentFailed(ctx context.Context, event *models.PaymentFailedEvent) error {
	ctx, span := util.StartSpan(ctx, "PaymentEventProcessor.HandlePaymentFailed")
	defer span.End()

	processed, err := p.store.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to check event processed: %w", err)
	}
	if processed {
		p.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	res, err := p.bookings.GetReservation(ctx, event.ReservationID)
	if err != nil {
		return err
	}

	if res.PaymentStatus == models.PaymentStatusPending {
		if _, err := p.bookings.TransitionReservationPayment(ctx, event.ReservationID, models.PaymentStatusFailed, event.IntentID); err != nil {
			return err
		}
	}

	if err := p.store.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		p.logger.Error("Failed to mark event processed", zap.Error(err))
	}

	p.logger.Warn("Payment failure applied",
		zap.String("booking_id", event.ReservationID),
		zap.String("reason", event.Reason))
	return nil
}
