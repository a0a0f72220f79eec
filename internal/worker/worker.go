package worker

import (
	"context"
	"log"

	"dealership-service/internal/broker"
	"dealership-service/internal/service"
)

// PaymentWorker consumes payment events from the booking topic and
// applies them to reservation records.
type PaymentWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
}

// NewPaymentWorker creates a new payment worker
func NewPaymentWorker(
	consumer *broker.Consumer,
	processor *service.PaymentEventProcessor,
) *PaymentWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnPaymentSucceeded(processor.HandlePaymentSucceeded)
	eventHandler.OnPaymentFailed(processor.HandlePaymentFailed)

	return &PaymentWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
	}
}

// Start starts the worker
func (w *PaymentWorker) Start(ctx context.Context) error {
	log.Println("Starting payment worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *PaymentWorker) Stop() error {
	log.Println("Stopping payment worker...")
	return w.consumer.Close()
}
