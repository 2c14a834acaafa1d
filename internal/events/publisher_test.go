package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"storefront/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func sampleOrder() *domain.Order {
	productID := uuid.New()
	return &domain.Order{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Total:  decimal.RequireFromString("25.00"),
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: &productID, ProductName: "Widget", Quantity: 2, Price: decimal.RequireFromString("10.00")},
			{ProductName: "Gadget", Quantity: 1, Price: decimal.RequireFromString("5.00")},
		},
	}
}

func TestOrderCreatedPublishesKeyedEvent(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisher(w, zap.NewNop())
	order := sampleOrder()

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-42")
	require.NoError(t, p.OrderCreated(ctx, order))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, order.ID.String(), string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "order.created", string(msg.Headers[0].Value))

	var event OrderEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventOrderCreated, event.Type)
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, "req-42", event.RequestID)
	assert.True(t, event.Total.Equal(order.Total))
	assert.Len(t, event.Items, 2)
}

func TestOrderStatusChangedCarriesPreviousStatus(t *testing.T) {
	w := &recordingWriter{}
	p := newPublisher(w, zap.NewNop())
	order := sampleOrder()
	order.Status = domain.OrderStatusDelivered

	require.NoError(t, p.OrderStatusChanged(context.Background(), order, domain.OrderStatusPending))
	require.Len(t, w.messages, 1)

	var event OrderEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &event))
	assert.Equal(t, EventOrderStatusChanged, event.Type)
	assert.Equal(t, domain.OrderStatusPending, event.PreviousStatus)
	assert.Equal(t, domain.OrderStatusDelivered, event.Status)
	assert.Empty(t, event.Items)
}

func TestPublishWrapsWriterErrors(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := newPublisher(w, zap.NewNop())

	err := p.OrderCreated(context.Background(), sampleOrder())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.OrderCreated(context.Background(), sampleOrder()))
	assert.NoError(t, p.OrderStatusChanged(context.Background(), sampleOrder(), domain.OrderStatusPending))
	assert.NoError(t, p.Close())
}

func TestKafkaPublisherDoesNotBlockOnDelivery(t *testing.T) {
	p, ok := NewKafkaPublisher([]string{"127.0.0.1:1"}, "orders", zap.NewNop()).(*kafkaPublisher)
	require.True(t, ok)
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)

	assert.True(t, w.Async)
	assert.Equal(t, 3, w.MaxAttempts)
	assert.NotNil(t, w.Completion)
	require.NoError(t, w.Close())
}

func TestFailedDeliveriesAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := newPublisher(&recordingWriter{}, zap.New(core))
	order := sampleOrder()

	require.NoError(t, p.OrderCreated(context.Background(), order))
	p.delivered(p.writer.(*recordingWriter).messages, nil)
	assert.Zero(t, logs.Len())

	p.delivered(p.writer.(*recordingWriter).messages, errors.New("leader not available"))
	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, order.ID.String(), fields["order_id"])
	assert.Equal(t, "order.created", fields["type"])
	assert.Equal(t, "leader not available", fields["error"])
}
