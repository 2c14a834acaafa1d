// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewDB opens a private in-memory sqlite database with foreign keys enforced
// and the full schema migrated. It is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig()
	// Statements prepared outside a transaction would need a second connection.
	cfg.PrepareStmt = false
	db, err := database.OpenGorm(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// One connection keeps a single in-memory database and serializes transactions.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&domain.User{},
		&domain.RefreshToken{},
		&domain.Category{},
		&domain.Product{},
		&domain.CartItem{},
		&domain.Order{},
		&domain.OrderItem{},
		&domain.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, role domain.Role) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	id := uuid.New()
	user := &domain.User{
		ID:           id,
		Email:        id.String() + "@example.com",
		PasswordHash: "x",
		Name:         "Test User",
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	must(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

func CreateCategory(t testing.TB, db *gorm.DB, name string) *domain.Category {
	t.Helper()
	now := time.Now().UTC()
	category := &domain.Category{ID: uuid.New(), Name: name, CreatedAt: now, UpdatedAt: now}
	must(t, db.Create(category).Error)
	return category
}

func CreateProduct(t testing.TB, db *gorm.DB, categoryID uuid.UUID, name, price string, stock int) *domain.Product {
	t.Helper()
	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		CategoryID:  categoryID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	must(t, db.Omit("Category").Create(product).Error)
	return product
}

// AddToCart inserts a cart line directly
func AddToCart(t testing.TB, db *gorm.DB, userID, productID uuid.UUID, qty int) *domain.CartItem {
	t.Helper()
	now := time.Now().UTC()
	item := &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: now,
		UpdatedAt: now,
	}
	must(t, db.Omit("User", "Product").Create(item).Error)
	return item
}

// Stock reads a product's current stock
func Stock(t testing.TB, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var p domain.Product
	must(t, db.Select("stock").Where("id = ?", productID).First(&p).Error)
	return p.Stock
}

func Principal(u *domain.User) domain.Principal {
	return domain.Principal{UserID: u.ID, Role: u.Role}
}

func must(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
}

type service struct {
	db *gorm.DB
}

// NewService wraps a fresh NewDB as a database.Service
func NewService(t testing.TB) database.Service {
	return &service{db: NewDB(t)}
}

func (s *service) DB() *sql.DB {
	sqlDB, _ := s.db.DB()
	return sqlDB
}

func (s *service) Gorm() *gorm.DB { return s.db }

func (s *service) Health(ctx context.Context) map[string]string {
	if err := s.DB().PingContext(ctx); err != nil {
		return map[string]string{"status": "down"}
	}
	return map[string]string{"status": "up"}
}

func (s *service) Close() error { return s.DB().Close() }
