// Package seed loads the default catalog and an optional admin account.
// Every step looks rows up by natural key first, so running it twice is a no-op.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result counts the rows created by Run
type Result struct {
	Categories int
	Products   int
	Admin      bool
}

// Run seeds inside one transaction
func Run(ctx context.Context, db *gorm.DB, cfg config.SeedConfig, logger *zap.Logger) (Result, error) {
	var res Result

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := repository.NewCategoryRepository(tx)
		products := repository.NewProductRepository(tx)
		users := repository.NewUserRepository(tx)

		ids := make(map[string]uuid.UUID, len(defaultCategories))
		for _, c := range defaultCategories {
			id, created, err := ensureCategory(ctx, categories, c)
			if err != nil {
				return err
			}
			ids[c.Name] = id
			if created {
				res.Categories++
			}
		}

		for _, p := range defaultProducts {
			created, err := ensureProduct(ctx, products, p, ids[p.Category])
			if err != nil {
				return err
			}
			if created {
				res.Products++
			}
		}

		if cfg.AdminEmail != "" {
			created, err := ensureAdmin(ctx, users, cfg)
			if err != nil {
				return err
			}
			res.Admin = created
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	logger.Info("Seed completed",
		zap.Int("categories_created", res.Categories),
		zap.Int("products_created", res.Products),
		zap.Bool("admin_created", res.Admin),
	)
	return res, nil
}

func ensureCategory(ctx context.Context, repo repository.CategoryRepository, c categorySeed) (uuid.UUID, bool, error) {
	existing, err := repo.FindByName(ctx, c.Name)
	if err == nil {
		return existing.ID, false, nil
	}
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		return uuid.Nil, false, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		ID:          uuid.New(),
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(ctx, category); err != nil {
		return uuid.Nil, false, fmt.Errorf("seed category %q: %w", c.Name, err)
	}
	return category.ID, true, nil
}

func ensureProduct(ctx context.Context, repo repository.ProductRepository, p productSeed, categoryID uuid.UUID) (bool, error) {
	_, err := repo.FindByName(ctx, p.Name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrProductNotFound) {
		return false, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(ctx, product); err != nil {
		return false, fmt.Errorf("seed product %q: %w", p.Name, err)
	}
	return true, nil
}

// ensureAdmin creates the admin account, or promotes an existing user with that email
func ensureAdmin(ctx context.Context, repo repository.UserRepository, cfg config.SeedConfig) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	existing, err := repo.FindByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			return false, repo.UpdateRole(ctx, existing.ID, domain.RoleAdmin)
		}
		return false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return false, err
	}

	if len(cfg.AdminPassword) < 8 {
		return false, errors.New("SEED_ADMIN_PASSWORD must be at least 8 characters")
	}
	hash, err := service.HashPassword(cfg.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}
