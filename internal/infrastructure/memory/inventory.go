package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	domainRepo "github.com/sangkips/retailpos/internal/domain/repository"
)

type inventoryRepository struct {
	view
}

func (r *inventoryRepository) Create(_ context.Context, batch *entity.InventoryBatch) error {
	return r.write(func(st *state) error {
		key := batch.Key()
		if _, exists := st.batches[key]; exists {
			return domainRepo.ErrDuplicateBatch
		}
		now := r.s.stamp()
		batch.CreatedAt = now
		batch.UpdatedAt = now
		stored := *batch
		stored.Product = nil
		st.batches[key] = stored
		return nil
	})
}

func (r *inventoryRepository) Get(_ context.Context, key entity.BatchKey) (*entity.InventoryBatch, error) {
	var out *entity.InventoryBatch
	r.read(func(st *state) {
		if b, ok := st.batches[key]; ok {
			out = &b
		}
	})
	return out, nil
}

func (r *inventoryRepository) Update(_ context.Context, batch *entity.InventoryBatch) error {
	return r.write(func(st *state) error {
		key := batch.Key()
		stored, ok := st.batches[key]
		if !ok {
			return domainRepo.ErrNotFound
		}
		stored.LowStockThreshold = batch.LowStockThreshold
		stored.ExpiryDate = batch.ExpiryDate
		stored.PurchaseDate = batch.PurchaseDate
		stored.UpdatedAt = r.s.stamp()
		st.batches[key] = stored
		*batch = stored
		return nil
	})
}

func (r *inventoryRepository) ListByProduct(_ context.Context, productID uuid.UUID) ([]entity.InventoryBatch, error) {
	var out []entity.InventoryBatch
	r.read(func(st *state) {
		for _, b := range st.batches {
			if b.ProductID == productID {
				out = append(out, b)
			}
		}
	})
	sortByCreation(out)
	return out, nil
}

// ListByProductForUpdate needs no extra locking: inside WithinTx the whole
// store is already exclusively held.
func (r *inventoryRepository) ListByProductForUpdate(ctx context.Context, productID uuid.UUID) ([]entity.InventoryBatch, error) {
	return r.ListByProduct(ctx, productID)
}

func (r *inventoryRepository) ListAll(_ context.Context) ([]entity.InventoryBatch, error) {
	var out []entity.InventoryBatch
	r.read(func(st *state) {
		out = make([]entity.InventoryBatch, 0, len(st.batches))
		for _, b := range st.batches {
			out = append(out, b)
		}
	})
	sortByCreation(out)
	return out, nil
}

func (r *inventoryRepository) AdjustQuantity(_ context.Context, key entity.BatchKey, delta int) (bool, error) {
	applied := false
	err := r.write(func(st *state) error {
		b, ok := st.batches[key]
		if !ok || b.Quantity+delta < 0 {
			return nil
		}
		b.Quantity += delta
		b.UpdatedAt = r.s.stamp()
		st.batches[key] = b
		applied = true
		return nil
	})
	return applied, err
}

func (r *inventoryRepository) DeleteByProduct(_ context.Context, productID uuid.UUID) error {
	return r.write(func(st *state) error {
		for key := range st.batches {
			if key.ProductID == productID {
				delete(st.batches, key)
			}
		}
		return nil
	})
}

// sortByCreation gives map-backed listings the insertion order a table scan
// would usually return.
func sortByCreation(batches []entity.InventoryBatch) {
	sort.Slice(batches, func(i, j int) bool {
		return batches[i].CreatedAt.Before(batches[j].CreatedAt)
	})
}
