package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/testutil"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
)

func newProduct(categoryID uuid.UUID, name, description string, cents int64, stock int) *domain.Product {
	now := time.Now().UTC()
	return &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       decimal.New(cents, -2),
		Stock:       stock,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Feature: storefront, Property 14: Product creation preserves attributes
func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepository(db)
	category := testutil.CreateCategory(t, db, "Property")
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, description string, cents int64, stock int) bool {
			product := newProduct(category.ID, name, description, cents, stock)
			if err := repo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Create failed: %v", err)
				return false
			}

			got, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: FindByID failed: %v", err)
				return false
			}

			if got.Name != name || got.Description != description || got.Stock != stock {
				t.Logf("FAIL: Attribute mismatch: %+v", got)
				return false
			}
			if !got.Price.Equal(product.Price) {
				t.Logf("FAIL: Price mismatch. Expected %s, got %s", product.Price, got.Price)
				return false
			}
			return got.Category != nil && got.Category.ID == category.ID
		},
		gen.RegexMatch(`[A-Z][a-z]{2,20}`),
		gen.AlphaString(),
		gen.Int64Range(1, 9999999),
		gen.IntRange(0, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 15: Product updates are reflected
func TestProperty_ProductUpdatesAreReflected(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepository(db)
	first := testutil.CreateCategory(t, db, "First")
	second := testutil.CreateCategory(t, db, "Second")
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("updating a product and retrieving it shows the updated values", prop.ForAll(
		func(name string, cents int64, stock int, move bool) bool {
			product := newProduct(first.ID, "Original", "original", 100, 1)
			if err := repo.Create(ctx, product); err != nil {
				return false
			}

			product.Name = name
			product.Price = decimal.New(cents, -2)
			product.Stock = stock
			if move {
				product.CategoryID = second.ID
			}
			if err := repo.Update(ctx, product); err != nil {
				t.Logf("FAIL: Update failed: %v", err)
				return false
			}

			got, err := repo.FindByID(ctx, product.ID)
			if err != nil {
				return false
			}
			return got.Name == name &&
				got.Price.Equal(product.Price) &&
				got.Stock == stock &&
				got.CategoryID == product.CategoryID
		},
		gen.RegexMatch(`[A-Z][a-z]{2,20}`),
		gen.Int64Range(1, 9999999),
		gen.IntRange(0, 10000),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: storefront, Property 16: Product deletion removes from catalog
func TestProperty_ProductDeletionRemovesFromCatalog(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewProductRepository(db)
	category := testutil.CreateCategory(t, db, "Deletions")
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("deleting a product makes it not retrievable", prop.ForAll(
		func(name string) bool {
			product := newProduct(category.ID, name, "", 500, 3)
			if err := repo.Create(ctx, product); err != nil {
				return false
			}
			if err := repo.Delete(ctx, product.ID); err != nil {
				t.Logf("FAIL: Delete failed: %v", err)
				return false
			}

			_, err := repo.FindByID(ctx, product.ID)
			if !errors.Is(err, repository.ErrProductNotFound) {
				t.Logf("FAIL: Expected ErrProductNotFound, got %v", err)
				return false
			}

			listed, err := repo.List(ctx, domain.ProductFilter{CategoryID: &category.ID})
			if err != nil {
				return false
			}
			for _, p := range listed {
				if p.ID == product.ID {
					return false
				}
			}
			return errors.Is(repo.Delete(ctx, product.ID), repository.ErrProductNotFound)
		},
		gen.RegexMatch(`[A-Z][a-z]{2,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
