package broker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bookstore-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	key   string
	event interface{}
	err   error
}

func (p *recordingProducer) PublishEvent(_ context.Context, key string, event interface{}) error {
	p.key = key
	p.event = event
	return p.err
}

func checkoutEvent() *models.CheckoutSubmittedEvent {
	return &models.CheckoutSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   "evt-1",
			EventType: models.EventTypeCheckoutSubmitted,
			Timestamp: time.Date(2026, 3, 18, 10, 0, 0, 0, time.UTC),
		},
		SessionID: "s1",
		Items: []models.CheckoutItemData{
			{BookID: 7, Quantity: 2, Price: decimal.NewFromInt(50000)},
		},
		TotalAmount: decimal.NewFromInt(100000),
		ShippingFee: decimal.NewFromInt(15000),
		GrandTotal:  decimal.NewFromInt(115000),
	}
}

func TestPublishCheckoutSubmittedKeyedBySession(t *testing.T) {
	producer := &recordingProducer{}
	publisher := NewEventPublisher(producer)

	err := publisher.PublishCheckoutSubmitted(context.Background(), checkoutEvent())

	require.NoError(t, err)
	assert.Equal(t, "session-s1", producer.key)
}

func TestPublishCheckoutSubmittedReturnsProducerError(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker down")}
	publisher := NewEventPublisher(producer)

	err := publisher.PublishCheckoutSubmitted(context.Background(), checkoutEvent())
	assert.Error(t, err)
}

func TestHandleMessageRoutesCheckout(t *testing.T) {
	payload, err := json.Marshal(checkoutEvent())
	require.NoError(t, err)

	var got *models.CheckoutSubmittedEvent
	handler := NewEventHandler()
	handler.OnCheckoutSubmitted(func(_ context.Context, e *models.CheckoutSubmittedEvent) error {
		got = e
		return nil
	})

	require.NoError(t, handler.HandleMessage(context.Background(), kafka.Message{Value: payload}))
	require.NotNil(t, got)
	assert.Equal(t, "evt-1", got.EventID)
	assert.Len(t, got.Items, 1)
	assert.True(t, got.GrandTotal.Equal(decimal.NewFromInt(115000)))
}

func TestHandleMessagePropagatesHandlerError(t *testing.T) {
	payload, _ := json.Marshal(checkoutEvent())
	handler := NewEventHandler()
	handler.OnCheckoutSubmitted(func(context.Context, *models.CheckoutSubmittedEvent) error {
		return errors.New("db down")
	})

	assert.Error(t, handler.HandleMessage(context.Background(), kafka.Message{Value: payload}))
}

func TestHandleMessageIgnoresUnknownType(t *testing.T) {
	handler := NewEventHandler()
	msg := kafka.Message{Value: []byte(`{"event_type":"SOMETHING_ELSE","event_id":"x"}`)}

	assert.NoError(t, handler.HandleMessage(context.Background(), msg))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	handler := NewEventHandler()
	assert.Error(t, handler.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")}))
}
