package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is a flat set of states. Any status may be set from any other.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// OrderStatuses lists every valid status
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// ParseOrderStatus returns the status named by s or ErrInvalidInput
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", Invalidf("unknown order status %q", s)
}

// Order is a placed purchase. Total is fixed at creation time.
type Order struct {
	ID        uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	User      *User           `json:"user,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Total     decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	Status    OrderStatus     `json:"status" gorm:"size:20;not null;default:PENDING;index"`
	Items     []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderItem snapshots a purchased product. ProductID is cleared if the
// product is later deleted; name and price stay.
type OrderItem struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID   *uuid.UUID      `json:"product_id" gorm:"type:uuid;index"`
	Product     *Product        `json:"product,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	ProductName string          `json:"product_name" gorm:"size:255;not null"`
	Quantity    int             `json:"quantity" gorm:"not null;check:chk_order_items_quantity,quantity >= 1"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
}

// OrderFilter selects orders for a listing. A nil UserID lists every order.
type OrderFilter struct {
	UserID *uuid.UUID
}
