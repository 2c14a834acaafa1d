// Package cartstore mirrors the server-side cart for a UI. The server is
// authoritative: every successful write is followed by a full refetch, and a
// failed write leaves the cached state as it was.
package cartstore

import (
	"context"
	"errors"
	"sync"

	"storefront/pkg/client"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidQuantity is returned locally, without a server call, for quantities below 1
var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// CartAPI is the subset of the storefront client the store needs
type CartAPI interface {
	GetCart(ctx context.Context) (*client.Cart, error)
	AddToCart(ctx context.Context, productID uuid.UUID, quantity int) (*client.CartItem, error)
	UpdateCartItem(ctx context.Context, itemID uuid.UUID, quantity int) (*client.CartItem, error)
	RemoveCartItem(ctx context.Context, itemID uuid.UUID) error
	ClearCart(ctx context.Context) error
}

// Store is safe for concurrent use. Writes are serialized so each one is
// followed by its own refetch before the next write starts.
type Store struct {
	api CartAPI

	writeMu sync.Mutex

	mu    sync.RWMutex
	items []client.CartItem
	// issued numbers each fetch; applied is the newest one stored in items
	issued   uint64
	applied  uint64
	inflight int
	loaded   bool
}

func New(api CartAPI) *Store {
	return &Store{api: api}
}

// Refresh replaces the cached items with the server's cart. A response is
// dropped when a fetch issued later has already been applied.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.inflight++
	s.mu.Unlock()

	cart, err := s.api.GetCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	if err != nil {
		return err
	}
	if seq < s.applied {
		return nil
	}
	s.items = append([]client.CartItem(nil), cart.Items...)
	s.applied = seq
	s.loaded = true
	return nil
}

func (s *Store) Add(ctx context.Context, productID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return s.write(ctx, func() error {
		_, err := s.api.AddToCart(ctx, productID, quantity)
		return err
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return s.write(ctx, func() error {
		_, err := s.api.UpdateCartItem(ctx, itemID, quantity)
		return err
	})
}

func (s *Store) Remove(ctx context.Context, itemID uuid.UUID) error {
	return s.write(ctx, func() error {
		return s.api.RemoveCartItem(ctx, itemID)
	})
}

func (s *Store) Clear(ctx context.Context) error {
	return s.write(ctx, func() error {
		return s.api.ClearCart(ctx)
	})
}

func (s *Store) write(ctx context.Context, call func() error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := call(); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Items returns a copy of the cached cart lines
func (s *Store) Items() []client.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]client.CartItem(nil), s.items...)
}

// Total is the sum of price times quantity over the cached lines
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Loading reports whether any fetch is still in flight
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Loaded reports whether at least one refresh has succeeded
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
