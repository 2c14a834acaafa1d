package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CategoryInput carries the writable fields of a category
type CategoryInput struct {
	Name        string
	Description string
}

// ProductInput carries the writable fields of a product
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	Stock       int
	CategoryID  uuid.UUID
}

// CatalogService manages categories and products. Reads are public;
// every mutation requires an admin principal and is audited.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]*domain.Category, error)
	GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	CreateCategory(ctx context.Context, p domain.Principal, in CategoryInput) (*domain.Category, error)
	UpdateCategory(ctx context.Context, p domain.Principal, id uuid.UUID, in CategoryInput) (*domain.Category, error)
	DeleteCategory(ctx context.Context, p domain.Principal, id uuid.UUID) error

	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Principal, in ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Principal, id uuid.UUID, in ProductInput) (*domain.Product, error)
	DeleteProduct(ctx context.Context, p domain.Principal, id uuid.UUID) error
}

type catalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	tx         repository.TransactionManager
}

func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	tx repository.TransactionManager,
) CatalogService {
	return &catalogService{categories: categories, products: products, tx: tx}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *catalogService) GetCategory(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return s.categories.FindByID(ctx, id)
}

func (s *catalogService) CreateCategory(ctx context.Context, p domain.Principal, in CategoryInput) (*domain.Category, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := r.Categories().Create(ctx, category); err != nil {
			return err
		}
		return recordAudit(ctx, r, p, domain.AuditActionCreate, domain.AuditResourceCategory, category.ID, nil, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, p domain.Principal, id uuid.UUID, in CategoryInput) (*domain.Category, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *domain.Category
	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		before, err := r.Categories().FindByID(ctx, id)
		if err != nil {
			return err
		}

		after := *before
		after.Name = strings.TrimSpace(in.Name)
		after.Description = strings.TrimSpace(in.Description)
		if err := r.Categories().Update(ctx, &after); err != nil {
			return err
		}
		updated = &after
		return recordAudit(ctx, r, p, domain.AuditActionUpdate, domain.AuditResourceCategory, id, before, &after)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteCategory removes the category and, through the foreign key, its products
func (s *catalogService) DeleteCategory(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	if err := requireAdmin(p); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		before, err := r.Categories().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Categories().Delete(ctx, id); err != nil {
			return err
		}
		return recordAudit(ctx, r, p, domain.AuditActionDelete, domain.AuditResourceCategory, id, before, nil)
	})
}

func (s *catalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	return s.products.List(ctx, filter)
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

func (s *catalogService) CreateProduct(ctx context.Context, p domain.Principal, in ProductInput) (*domain.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	in.apply(product)

	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		if err := ensureCategory(ctx, r, in.CategoryID); err != nil {
			return err
		}
		if err := r.Products().Create(ctx, product); err != nil {
			return err
		}
		return recordAudit(ctx, r, p, domain.AuditActionCreate, domain.AuditResourceProduct, product.ID, nil, product)
	})
	if err != nil {
		return nil, err
	}
	return s.products.FindByID(ctx, product.ID)
}

func (s *catalogService) UpdateProduct(ctx context.Context, p domain.Principal, id uuid.UUID, in ProductInput) (*domain.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	err := s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		before, err := r.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := ensureCategory(ctx, r, in.CategoryID); err != nil {
			return err
		}

		after := *before
		after.Category = nil
		in.apply(&after)
		if err := r.Products().Update(ctx, &after); err != nil {
			return err
		}
		return recordAudit(ctx, r, p, domain.AuditActionUpdate, domain.AuditResourceProduct, id, before, &after)
	})
	if err != nil {
		return nil, err
	}
	return s.products.FindByID(ctx, id)
}

func (s *catalogService) DeleteProduct(ctx context.Context, p domain.Principal, id uuid.UUID) error {
	if err := requireAdmin(p); err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(r repository.TxRepos) error {
		before, err := r.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := r.Products().Delete(ctx, id); err != nil {
			return err
		}
		return recordAudit(ctx, r, p, domain.AuditActionDelete, domain.AuditResourceProduct, id, before, nil)
	})
}

func ensureCategory(ctx context.Context, r repository.TxRepos, id uuid.UUID) error {
	if _, err := r.Categories().FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return domain.Invalidf("category %s does not exist", id)
		}
		return fmt.Errorf("failed to check category: %w", err)
	}
	return nil
}

func (in CategoryInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.Invalidf("category name is required")
	}
	return nil
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return domain.Invalidf("product name is required")
	case !in.Price.IsPositive():
		return domain.Invalidf("price must be greater than 0")
	case in.Stock < 0:
		return domain.Invalidf("stock must not be negative")
	case in.CategoryID == uuid.Nil:
		return domain.Invalidf("category id is required")
	}
	return nil
}

func (in ProductInput) apply(p *domain.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price.Round(2)
	p.ImageURL = strings.TrimSpace(in.ImageURL)
	p.Stock = in.Stock
	p.CategoryID = in.CategoryID
}
