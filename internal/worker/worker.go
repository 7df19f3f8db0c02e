package worker

import (
	"context"

	"bookstore-service/internal/broker"
	"bookstore-service/internal/models"
	"bookstore-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageSource is the consuming side of the broker
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// CheckoutRecorder persists a submitted checkout
type CheckoutRecorder interface {
	HandleCheckoutSubmitted(ctx context.Context, event *models.CheckoutSubmittedEvent) error
}

// TransactionWorker records submitted checkouts as transactions
type TransactionWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
	logger       *zap.Logger
}

// NewTransactionWorker creates a new transaction worker
func NewTransactionWorker(consumer MessageSource, recorder CheckoutRecorder) *TransactionWorker {
	eventHandler := broker.NewEventHandler()
	eventHandler.OnCheckoutSubmitted(recorder.HandleCheckoutSubmitted)

	return &TransactionWorker{
		consumer:     consumer,
		eventHandler: eventHandler,
		logger:       util.ComponentLogger("transaction-worker"),
	}
}

// Start starts the worker
func (w *TransactionWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting transaction worker")
	return w.consumer.StartConsuming(ctx, w.handle)
}

func (w *TransactionWorker) handle(ctx context.Context, msg kafka.Message) error {
	return w.eventHandler.HandleMessage(ctx, msg)
}

// Stop stops the worker
func (w *TransactionWorker) Stop() error {
	w.logger.Info("Stopping transaction worker")
	return w.consumer.Close()
}
