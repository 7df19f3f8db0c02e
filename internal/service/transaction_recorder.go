package service

import (
	"context"
	"fmt"

	"bookstore-service/internal/models"
	"bookstore-service/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TransactionWriter persists checkouts and remembers which events it has seen
type TransactionWriter interface {
	IsEventProcessed(ctx context.Context, eventID string) (bool, error)
	MarkEventProcessed(ctx context.Context, eventID, eventType string) error
	CreateTransactionFromCheckout(ctx context.Context, event *models.CheckoutSubmittedEvent) (int64, error)
}

// TransactionRecorder turns checkout events into stored transactions
type TransactionRecorder struct {
	writer TransactionWriter
	logger *zap.Logger
}

// NewTransactionRecorder creates a new transaction recorder
func NewTransactionRecorder(writer TransactionWriter) *TransactionRecorder {
	return &TransactionRecorder{
		writer: writer,
		logger: util.GetLogger(),
	}
}

// HandleCheckoutSubmitted stores the checkout once. Redelivered events are
// acknowledged without writing again.
func (r *TransactionRecorder) HandleCheckoutSubmitted(ctx context.Context, event *models.CheckoutSubmittedEvent) error {
	ctx, span := util.StartSpan(ctx, "TransactionRecorder.HandleCheckoutSubmitted")
	defer span.End()
	span.SetAttributes(attribute.String("event_id", event.EventID))

	processed, err := r.writer.IsEventProcessed(ctx, event.EventID)
	if err != nil {
		return util.SpanError(span, fmt.Errorf("failed to check event: %w", err))
	}
	if processed {
		r.logger.Info("Event already processed", zap.String("event_id", event.EventID))
		return nil
	}

	if len(event.Items) == 0 {
		r.logger.Warn("Dropping checkout without items", zap.String("event_id", event.EventID))
		return r.writer.MarkEventProcessed(ctx, event.EventID, event.EventType)
	}

	txID, err := r.writer.CreateTransactionFromCheckout(ctx, event)
	if err != nil {
		return util.SpanError(span, fmt.Errorf("failed to record transaction: %w", err))
	}

	if err := r.writer.MarkEventProcessed(ctx, event.EventID, event.EventType); err != nil {
		r.logger.Error("Failed to mark event as processed",
			zap.String("event_id", event.EventID),
			zap.Error(err))
	}

	util.TransactionsRecordedTotal.Inc()
	r.logger.Info("Transaction recorded",
		zap.Int64("transaction_id", txID),
		zap.String("session_id", event.SessionID),
		zap.String("event_id", event.EventID))
	return nil
}
