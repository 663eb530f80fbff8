package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBatch(t *testing.T) {
	f := newFEFOFixture(t)
	p := f.product("Soap", "30.00", "0", "0")

	b := f.batch(p.ID, "  Main ", "", 10, nil)
	assert.Equal(t, "Main", b.Location)
	assert.True(t, strings.HasPrefix(b.BatchID, "BATCH-"))
	assert.Equal(t, entity.DefaultLowStockThreshold, b.LowStockThreshold)
	require.NotNil(t, b.Product)

	_, err := f.inventory.AddBatch(f.ctx, &AddBatchInput{ProductID: p.ID, Location: "Main", BatchID: b.BatchID, Quantity: 1})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	_, err = f.inventory.AddBatch(f.ctx, &AddBatchInput{ProductID: uuid.New(), Location: "Main", Quantity: 1})
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = f.inventory.AddBatch(f.ctx, &AddBatchInput{ProductID: p.ID, Quantity: 0})
	require.Error(t, err)
	fields := []string{}
	for _, fe := range apperror.GetAppError(err).Errors {
		fields = append(fields, fe.Field)
	}
	assert.Equal(t, []string{"location", "quantity"}, fields)
}

func TestAdjust(t *testing.T) {
	f := newFEFOFixture(t)
	p := f.product("Soap", "30.00", "0", "0")
	key := f.batch(p.ID, "Main", "S1", 4, nil).Key()

	b, err := f.inventory.Adjust(f.ctx, key, 6, "restock")
	require.NoError(t, err)
	assert.Equal(t, 10, b.Quantity)

	b, err = f.inventory.Adjust(f.ctx, key, -10, "damaged")
	require.NoError(t, err)
	assert.Equal(t, 0, b.Quantity)

	_, err = f.inventory.Adjust(f.ctx, key, -1, "count")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInsufficientStock))
	sh := apperror.GetAppError(err).Shortages[0]
	assert.Equal(t, "Soap", sh.Name)
	assert.Equal(t, 1, sh.Shortfall)
	assert.Equal(t, 0, f.quantity(key))

	_, err = f.inventory.Adjust(f.ctx, key, 0, "")
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	missing := entity.BatchKey{ProductID: p.ID, Location: "Main", BatchID: "NOPE"}
	_, err = f.inventory.Adjust(f.ctx, missing, 1, "")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

// racingInventory rejects the first n adjustments as if another writer got
// there first, without touching stock.
type racingInventory struct {
	repository.InventoryRepository
	rejects int
	calls   int
}

func (r *racingInventory) AdjustQuantity(ctx context.Context, key entity.BatchKey, delta int) (bool, error) {
	r.calls++
	if r.calls <= r.rejects {
		return false, nil
	}
	return r.InventoryRepository.AdjustQuantity(ctx, key, delta)
}

func TestAdjustAfterConcurrentChange(t *testing.T) {
	f := newFEFOFixture(t)
	p := f.product("Soap", "30.00", "0", "0")
	key := f.batch(p.ID, "Main", "S1", 4, nil).Key()

	repo := &racingInventory{InventoryRepository: f.store.Inventory(), rejects: 1}
	svc := NewInventoryService(repo, f.store.Products(), AllocationRules{Policy: enum.AllocationFEFO})

	b, err := svc.Adjust(f.ctx, key, -3, "sold offline")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Quantity)
	assert.Equal(t, 2, repo.calls)

	// rejected again on retry: reported, never with a negative shortfall
	repo.rejects, repo.calls = 2, 0
	_, err = svc.Adjust(f.ctx, key, -1, "count")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrInsufficientStock))
	sh := apperror.GetAppError(err).Shortages[0]
	assert.Equal(t, 1, sh.Available)
	assert.Equal(t, 0, sh.Shortfall)
	assert.Equal(t, 2, repo.calls)
	assert.Equal(t, 1, f.quantity(key))
}

func TestUpdateBatch(t *testing.T) {
	f := newFEFOFixture(t)
	p := f.product("Soap", "30.00", "0", "0")
	key := f.batch(p.ID, "Main", "S1", 4, days(5)).Key()

	threshold := 2
	b, err := f.inventory.UpdateBatch(f.ctx, key, &UpdateBatchInput{LowStockThreshold: &threshold, ClearExpiry: true})
	require.NoError(t, err)
	assert.Equal(t, 2, b.LowStockThreshold)
	assert.Nil(t, b.ExpiryDate)
	assert.Equal(t, 4, b.Quantity)

	negative := -1
	_, err = f.inventory.UpdateBatch(f.ctx, key, &UpdateBatchInput{LowStockThreshold: &negative})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestLowStockAndExpiryReports(t *testing.T) {
	f := newFEFOFixture(t)
	p := f.product("Milk", "28.00", "0", "0")
	low := f.batch(p.ID, "Main", "LOW", 5, nil)
	f.batch(p.ID, "Main", "OK", 50, days(90))
	soon := f.batch(p.ID, "Main", "SOON", 20, days(7))
	gone := f.batch(p.ID, "Main", "GONE", 20, days(-2))

	lowStock, err := f.inventory.LowStock(f.ctx)
	require.NoError(t, err)
	require.Len(t, lowStock, 1)
	assert.Equal(t, low.BatchID, lowStock[0].BatchID)

	expiring, err := f.inventory.Expiring(f.ctx, 0)
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, soon.BatchID, expiring[0].BatchID)
	assert.Equal(t, enum.ExpiryStatusExpiringSoon, expiring[0].ExpiryStatus(f.now))

	wide, err := f.inventory.Expiring(f.ctx, 120*24*time.Hour)
	require.NoError(t, err)
	assert.Len(t, wide, 2)

	expired, err := f.inventory.Expired(f.ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, gone.BatchID, expired[0].BatchID)
}

func TestListBatchesOrdersByPolicy(t *testing.T) {
	f := newFEFOFixture(t)
	p := f.product("Milk", "28.00", "0", "0")
	f.batch(p.ID, "Main", "LATE", 5, days(30))
	f.batch(p.ID, "Main", "NONE", 5, nil)
	f.batch(p.ID, "Main", "EARLY", 5, days(3))

	batches, err := f.inventory.ListBatches(f.ctx, &p.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(batches))
	for _, b := range batches {
		got = append(got, b.BatchID)
	}
	assert.Equal(t, []string{"EARLY", "LATE", "NONE"}, got)

	other := uuid.New()
	_, err = f.inventory.ListBatches(f.ctx, &other)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestAvailableHonoursSkipExpired(t *testing.T) {
	f := newFixture(t, AllocationRules{Policy: enum.AllocationFEFO, SkipExpired: true})
	p := f.product("Milk", "28.00", "0", "0")
	f.batch(p.ID, "Main", "GONE", 4, days(-1))
	f.batch(p.ID, "Main", "FRESH", 3, days(5))

	n, err := f.inventory.Available(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = f.billing.Checkout(f.ctx, cash(CartLine{ProductID: p.ID, Quantity: 4}))
	assert.True(t, errors.Is(err, apperror.ErrInsufficientStock))
}
