package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Publisher emits order lifecycle events
type Publisher interface {
	OrderCreated(ctx context.Context, order *domain.Order) error
	OrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.OrderStatus) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher writes events to topic on brokers, keyed by order id.
// Writes are asynchronous: publishing only enqueues, and delivery failures
// are logged once retries are exhausted. Close flushes pending events.
func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Async:                  true,
		MaxAttempts:            3,
		BatchTimeout:           100 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
	p := newPublisher(w, logger)
	w.Completion = p.delivered
	return p
}

func newPublisher(w messageWriter, logger *zap.Logger) *kafkaPublisher {
	return &kafkaPublisher{writer: w, logger: logger}
}

func (p *kafkaPublisher) OrderCreated(ctx context.Context, order *domain.Order) error {
	return p.publish(ctx, newOrderEvent(EventOrderCreated, order, middleware.GetReqID(ctx)))
}

func (p *kafkaPublisher) OrderStatusChanged(ctx context.Context, order *domain.Order, previous domain.OrderStatus) error {
	event := newOrderEvent(EventOrderStatusChanged, order, middleware.GetReqID(ctx))
	event.PreviousStatus = previous
	event.Items = nil
	return p.publish(ctx, event)
}

func (p *kafkaPublisher) publish(ctx context.Context, event OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshal %s: %w", event.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write %s: %w", event.Type, err)
	}

	p.logger.Debug("Queued order event",
		zap.String("type", string(event.Type)),
		zap.String("order_id", event.OrderID.String()),
	)
	return nil
}

// delivered is the writer's completion callback
func (p *kafkaPublisher) delivered(messages []kafka.Message, err error) {
	if err == nil {
		return
	}
	for _, msg := range messages {
		eventType := ""
		for _, h := range msg.Headers {
			if h.Key == "event_type" {
				eventType = string(h.Value)
			}
		}
		p.logger.Warn("Failed to deliver order event",
			zap.String("type", eventType),
			zap.String("order_id", string(msg.Key)),
			zap.Error(err),
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) OrderCreated(context.Context, *domain.Order) error { return nil }

func (NopPublisher) OrderStatusChanged(context.Context, *domain.Order, domain.OrderStatus) error {
	return nil
}

func (NopPublisher) Close() error { return nil }
