package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepos exposes repositories bound to a single transaction
type TxRepos interface {
	Categories() CategoryRepository
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	AuditLogs() AuditLogRepository
}

// TransactionManager runs fn inside one database transaction.
// Returning an error from fn rolls everything back.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}

type txRepos struct {
	categories CategoryRepository
	products   ProductRepository
	carts      CartRepository
	orders     OrderRepository
	auditLogs  AuditLogRepository
}

func (r *txRepos) Categories() CategoryRepository { return r.categories }
func (r *txRepos) Products() ProductRepository    { return r.products }
func (r *txRepos) Carts() CartRepository          { return r.carts }
func (r *txRepos) Orders() OrderRepository        { return r.orders }
func (r *txRepos) AuditLogs() AuditLogRepository  { return r.auditLogs }

type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) TransactionManager {
	return &transactionManager{db: db}
}

func (tm *transactionManager) WithinTx(ctx context.Context, fn func(r TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepos{
			categories: NewCategoryRepository(tx),
			products:   NewProductRepository(tx),
			carts:      NewCartRepository(tx),
			orders:     NewOrderRepository(tx),
			auditLogs:  NewAuditLogRepository(tx),
		})
	})
}
