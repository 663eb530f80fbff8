package repository

import (
	"context"

	domainRepo "github.com/sangkips/retailpos/internal/domain/repository"
	"gorm.io/gorm"
)

type transactor struct {
	db *gorm.DB
}

// NewTransactor runs units of work in a database transaction.
func NewTransactor(db *gorm.DB) domainRepo.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx domainRepo.Tx) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &txRepos{db: tx})
	})
}

type txRepos struct {
	db *gorm.DB
}

func (t *txRepos) Products() domainRepo.ProductRepository   { return NewProductRepository(t.db) }
func (t *txRepos) Inventory() domainRepo.InventoryRepository { return NewInventoryRepository(t.db) }
func (t *txRepos) Bills() domainRepo.BillRepository          { return NewBillRepository(t.db) }
