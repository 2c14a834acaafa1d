package service

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
)

// CartService manages the principal's cart lines
type CartService interface {
	// GetCart returns the cart of userID; only admins may read another user's cart
	GetCart(ctx context.Context, p domain.Principal, userID uuid.UUID) ([]*domain.CartItem, error)
	AddItem(ctx context.Context, p domain.Principal, productID uuid.UUID, quantity int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, p domain.Principal, itemID uuid.UUID, quantity int) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, p domain.Principal, itemID uuid.UUID) error
	Clear(ctx context.Context, p domain.Principal) error
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

func (s *cartService) GetCart(ctx context.Context, p domain.Principal, userID uuid.UUID) ([]*domain.CartItem, error) {
	if userID == uuid.Nil {
		userID = p.UserID
	}
	if !p.CanAccessUser(userID) {
		return nil, domain.ErrForbidden
	}
	return s.carts.ListByUser(ctx, userID)
}

// AddItem inserts the product or increments the existing line
func (s *cartService) AddItem(ctx context.Context, p domain.Principal, productID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if productID == uuid.Nil {
		return nil, domain.Invalidf("product id is required")
	}
	if quantity < 1 {
		return nil, domain.Invalidf("quantity must be at least 1")
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	return s.carts.AddOrIncrement(ctx, p.UserID, productID, quantity)
}

func (s *cartService) UpdateQuantity(ctx context.Context, p domain.Principal, itemID uuid.UUID, quantity int) (*domain.CartItem, error) {
	if quantity < 1 {
		return nil, domain.Invalidf("quantity must be at least 1")
	}
	if _, err := s.ownedItem(ctx, p, itemID); err != nil {
		return nil, err
	}

	if err := s.carts.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return nil, err
	}
	return s.carts.FindByID(ctx, itemID)
}

func (s *cartService) RemoveItem(ctx context.Context, p domain.Principal, itemID uuid.UUID) error {
	if _, err := s.ownedItem(ctx, p, itemID); err != nil {
		return err
	}
	return s.carts.Delete(ctx, itemID)
}

func (s *cartService) Clear(ctx context.Context, p domain.Principal) error {
	_, err := s.carts.DeleteByUser(ctx, p.UserID)
	return err
}

// ownedItem hides lines of other users behind a not-found error
func (s *cartService) ownedItem(ctx context.Context, p domain.Principal, itemID uuid.UUID) (*domain.CartItem, error) {
	item, err := s.carts.FindByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != p.UserID {
		return nil, repository.ErrCartItemNotFound
	}
	return item, nil
}
