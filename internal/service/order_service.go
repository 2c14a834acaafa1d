package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrCartChanged aborts a checkout whose cart lines were consumed or changed
// by a concurrent request after they were read
var ErrCartChanged = domain.NewError(domain.ErrConflict, "cart changed during checkout, please retry")

// OrderService places and manages orders
type OrderService interface {
	// PlaceOrder converts the principal's cart into a PENDING order. Stock
	// decrements, order creation and cart clearing commit together or not at all.
	PlaceOrder(ctx context.Context, p domain.Principal) (*domain.Order, error)
	// List returns the principal's orders, or every order when all is set (admin only)
	List(ctx context.Context, p domain.Principal, all bool) ([]*domain.Order, error)
	Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Order, error)
	UpdateStatus(ctx context.Context, p domain.Principal, id uuid.UUID, status string) (*domain.Order, error)
}

type orderService struct {
	orders    repository.OrderRepository
	tx        repository.TransactionManager
	publisher events.Publisher
	logger    *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	tx repository.TransactionManager,
	publisher events.Publisher,
	logger *zap.Logger,
) OrderService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &orderService{orders: orders, tx: tx, publisher: publisher, logger: logger}
}

func (s *orderService) PlaceOrder(ctx context.Context, p domain.Principal) (*domain.Order, error) {
	var orderID uuid.UUID

	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		items, err := r.Carts().ListByUserForUpdate(ctx, p.UserID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return domain.ErrEmptyCart
		}

		// Lock rows in a stable order so concurrent checkouts cannot deadlock.
		sorted := make([]*domain.CartItem, len(items))
		copy(sorted, items)
		sort.Slice(sorted, func(i, j int) bool {
			return sorted[i].ProductID.String() < sorted[j].ProductID.String()
		})

		for _, item := range sorted {
			ok, err := r.Products().DecreaseStockIfEnough(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return insufficientStock(ctx, r, item)
			}
		}

		order := buildOrder(p.UserID, items)
		if err := r.Orders().Create(ctx, order); err != nil {
			return err
		}
		removed, err := r.Carts().DeleteByUser(ctx, p.UserID)
		if err != nil {
			return err
		}
		if removed != int64(len(items)) {
			return ErrCartChanged
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", order.UserID.String()),
		zap.String("total", order.Total.StringFixed(2)),
	)
	if err := s.publisher.OrderCreated(ctx, order); err != nil {
		s.logger.Warn("Failed to publish order created event", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
	return order, nil
}

func (s *orderService) List(ctx context.Context, p domain.Principal, all bool) ([]*domain.Order, error) {
	if all {
		if err := requireAdmin(p); err != nil {
			return nil, err
		}
		return s.orders.List(ctx, domain.OrderFilter{})
	}
	userID := p.UserID
	return s.orders.List(ctx, domain.OrderFilter{UserID: &userID})
}

// Get hides orders of other users behind a not-found error unless p is an admin
func (s *orderService) Get(ctx context.Context, p domain.Principal, id uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanAccessUser(order.UserID) {
		return nil, repository.ErrOrderNotFound
	}
	return order, nil
}

// UpdateStatus sets any status from any other. Stock is not restored on cancellation.
func (s *orderService) UpdateStatus(ctx context.Context, p domain.Principal, id uuid.UUID, status string) (*domain.Order, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	var previous domain.OrderStatus
	err = s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		before, err := r.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		previous = before.Status

		if err := r.Orders().UpdateStatus(ctx, id, next); err != nil {
			return err
		}
		return recordAudit(ctx, r, p, domain.AuditActionUpdateOrderStatus, domain.AuditResourceOrder, id,
			map[string]domain.OrderStatus{"status": previous},
			map[string]domain.OrderStatus{"status": next},
		)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(next)),
		zap.String("actor_id", p.UserID.String()),
	)
	if err := s.publisher.OrderStatusChanged(ctx, order, previous); err != nil {
		s.logger.Warn("Failed to publish order status event", zap.String("order_id", id.String()), zap.Error(err))
	}
	return order, nil
}

// OrderTotal sums price times quantity over the cart lines
func OrderTotal(items []*domain.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func buildOrder(userID uuid.UUID, items []*domain.CartItem) *domain.Order {
	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uuid.New(),
		UserID:    userID,
		Total:     OrderTotal(items),
		Status:    domain.OrderStatusPending,
		Items:     make([]domain.OrderItem, 0, len(items)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, item := range items {
		productID := item.ProductID
		order.Items = append(order.Items, domain.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			ProductID:   &productID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
		})
	}
	return order
}

func insufficientStock(ctx context.Context, r repository.TxRepos, item *domain.CartItem) error {
	stockErr := &domain.InsufficientStockError{
		ProductID: item.ProductID,
		Requested: item.Quantity,
	}
	if item.Product != nil {
		stockErr.ProductName = item.Product.Name
	}

	product, err := r.Products().FindByID(ctx, item.ProductID)
	switch {
	case err == nil:
		stockErr.ProductName = product.Name
		stockErr.Available = product.Stock
	case errors.Is(err, repository.ErrProductNotFound):
	default:
		return fmt.Errorf("failed to read stock: %w", err)
	}
	return stockErr
}
