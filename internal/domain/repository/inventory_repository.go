package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
)

// InventoryRepository stores batches. List methods return rows in storage
// order; callers that need an allocation order sort them.
type InventoryRepository interface {
	Create(ctx context.Context, batch *entity.InventoryBatch) error
	Get(ctx context.Context, key entity.BatchKey) (*entity.InventoryBatch, error)
	Update(ctx context.Context, batch *entity.InventoryBatch) error
	// ListByProduct returns every batch of one product.
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.InventoryBatch, error)
	// ListByProductForUpdate is ListByProduct holding row locks until the
	// surrounding transaction ends.
	ListByProductForUpdate(ctx context.Context, productID uuid.UUID) ([]entity.InventoryBatch, error)
	ListAll(ctx context.Context) ([]entity.InventoryBatch, error)
	// AdjustQuantity adds delta to the batch quantity only if the result stays
	// non-negative. It reports false when the guard rejected the change or the
	// batch does not exist.
	AdjustQuantity(ctx context.Context, key entity.BatchKey, delta int) (bool, error)
	DeleteByProduct(ctx context.Context, productID uuid.UUID) error
}
