package events

import (
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
)

// OrderEvent is the JSON payload published for order lifecycle changes
type OrderEvent struct {
	EventID        string             `json:"event_id"`
	Type           EventType          `json:"type"`
	OrderID        uuid.UUID          `json:"order_id"`
	UserID         uuid.UUID          `json:"user_id"`
	Total          decimal.Decimal    `json:"total"`
	Status         domain.OrderStatus `json:"status"`
	PreviousStatus domain.OrderStatus `json:"previous_status,omitempty"`
	Items          []OrderEventItem   `json:"items,omitempty"`
	RequestID      string             `json:"request_id,omitempty"`
	Timestamp      time.Time          `json:"timestamp"`
}

type OrderEventItem struct {
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func newOrderEvent(t EventType, order *domain.Order, requestID string) OrderEvent {
	items := make([]OrderEventItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderEventItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}

	return OrderEvent{
		EventID:   uuid.NewString(),
		Type:      t,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Total:     order.Total,
		Status:    order.Status,
		Items:     items,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
	}
}
