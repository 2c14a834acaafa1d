package seed

import (
	"context"
	"testing"

	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestRunIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	cfg := config.SeedConfig{AdminEmail: "Admin@Example.com", AdminPassword: "admin-password"}

	first, err := Run(ctx, db, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{Categories: len(defaultCategories), Products: len(defaultProducts), Admin: true}, first)

	second, err := Run(ctx, db, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Result{}, second)

	products, err := repository.NewProductRepository(db).List(ctx, domain.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, products, len(defaultProducts))
	for _, p := range products {
		require.NotNil(t, p.Category, p.Name)
		assert.True(t, p.Price.IsPositive())
	}

	admin, err := repository.NewUserRepository(db).FindByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin-password")))
}

func TestRunPromotesExistingUser(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, domain.RoleCustomer)

	res, err := Run(ctx, db, config.SeedConfig{AdminEmail: user.Email}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, res.Admin)

	stored, err := repository.NewUserRepository(db).FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestRunRejectsShortAdminPasswordAndRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()

	_, err := Run(ctx, db, config.SeedConfig{AdminEmail: "root@example.com", AdminPassword: "short"}, zap.NewNop())
	require.Error(t, err)

	categories, err := repository.NewCategoryRepository(db).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestRunWithoutAdmin(t *testing.T) {
	db := testutil.NewDB(t)

	res, err := Run(context.Background(), db, config.SeedConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, res.Admin)
	assert.Equal(t, len(defaultCategories), res.Categories)
}
