package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCartItemNotFound = domain.NewError(domain.ErrNotFound, "cart item not found")
)

// CartRepository defines the interface for cart item data access
type CartRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	// ListByUserForUpdate is ListByUser with the cart rows locked until the
	// surrounding transaction ends
	ListByUserForUpdate(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error)
	// AddOrIncrement inserts the (user, product) line or adds qty to it
	AddOrIncrement(ctx context.Context, userID, productID uuid.UUID, qty int) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

// ListByUser returns the user's cart lines with product and category loaded
func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	return r.listByUser(r.db.WithContext(ctx), userID)
}

func (r *cartRepository) ListByUserForUpdate(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	return r.listByUser(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func (r *cartRepository) listByUser(db *gorm.DB, userID uuid.UUID) ([]*domain.CartItem, error) {
	items := []*domain.CartItem{}
	err := db.
		Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	return items, nil
}

func (r *cartRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.CartItem, error) {
	var item domain.CartItem
	err := r.db.WithContext(ctx).Preload("Product.Category").Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

func (r *cartRepository) AddOrIncrement(ctx context.Context, userID, productID uuid.UUID, qty int) (*domain.CartItem, error) {
	now := time.Now().UTC()
	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + ?", qty),
				"updated_at": now,
			}),
		}).
		Create(item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	// On conflict the row keeps its original id, so read it back by key.
	var stored domain.CartItem
	err = r.db.WithContext(ctx).
		Preload("Product.Category").
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&stored).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}
	return &stored, nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	res := r.db.WithContext(ctx).
		Model(&domain.CartItem{}).
		Where("id = ?", id).
		Update("quantity", qty)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *cartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

// DeleteByUser empties the user's cart and returns the number of lines removed
func (r *cartRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.CartItem{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", res.Error)
	}
	return res.RowsAffected, nil
}
