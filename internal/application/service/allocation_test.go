package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lot(productID uuid.UUID, batchID string, qty int, created time.Time, expiry *time.Time) entity.InventoryBatch {
	return entity.InventoryBatch{
		ProductID:  productID,
		Location:   "Main",
		BatchID:    batchID,
		Quantity:   qty,
		ExpiryDate: expiry,
		CreatedAt:  created,
	}
}

func takes(plan *AllocationPlan) map[string]int {
	out := map[string]int{}
	for _, t := range plan.Takes {
		out[t.Key.BatchID] = t.Quantity
	}
	return out
}

func TestAllocateFEFOPrefersEarliestExpiry(t *testing.T) {
	pid := uuid.New()
	batches := []entity.InventoryBatch{
		lot(pid, "NOEXP", 10, fixedNow.Add(-3*time.Hour), nil),
		lot(pid, "LATE", 10, fixedNow.Add(-2*time.Hour), days(60)),
		lot(pid, "SOON", 4, fixedNow.Add(-time.Hour), days(10)),
	}

	plan, err := AllocationRules{Policy: enum.AllocationFEFO}.Allocate(pid, batches, 12, fixedNow)
	require.NoError(t, err)

	require.Len(t, plan.Takes, 2)
	assert.Equal(t, "SOON", plan.Takes[0].Key.BatchID)
	assert.Equal(t, map[string]int{"SOON": 4, "LATE": 8}, takes(plan))
	assert.Empty(t, plan.SingleBatch())
}

func TestAllocateFirstSeenFollowsReceiptOrder(t *testing.T) {
	pid := uuid.New()
	batches := []entity.InventoryBatch{
		lot(pid, "SECOND", 5, fixedNow.Add(-time.Hour), days(5)),
		lot(pid, "FIRST", 3, fixedNow.Add(-2*time.Hour), days(90)),
	}

	plan, err := AllocationRules{Policy: enum.AllocationFirstSeen}.Allocate(pid, batches, 6, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "FIRST", plan.Takes[0].Key.BatchID)
	assert.Equal(t, map[string]int{"FIRST": 3, "SECOND": 3}, takes(plan))
}

func TestAllocateSingleBatch(t *testing.T) {
	pid := uuid.New()
	batches := []entity.InventoryBatch{lot(pid, "ONLY", 5, fixedNow, nil)}

	plan, err := AllocationRules{}.Allocate(pid, batches, 5, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "ONLY", plan.SingleBatch())
}

func TestAllocateShortReturnsShortage(t *testing.T) {
	pid := uuid.New()
	batches := []entity.InventoryBatch{
		lot(pid, "A", 3, fixedNow, nil),
		lot(pid, "B", 5, fixedNow, nil),
	}

	plan, err := AllocationRules{}.Allocate(pid, batches, 9, fixedNow)
	require.Error(t, err)
	assert.Nil(t, plan)
	assert.True(t, errors.Is(err, apperror.ErrInsufficientStock))

	appErr := apperror.GetAppError(err)
	require.Len(t, appErr.Shortages, 1)
	assert.Equal(t, apperror.StockShortage{ProductID: pid, Requested: 9, Available: 8, Shortfall: 1}, appErr.Shortages[0])

	// input untouched
	assert.Equal(t, 3, batches[0].Quantity)
	assert.Equal(t, 5, batches[1].Quantity)
}

func TestAllocateSkipExpired(t *testing.T) {
	pid := uuid.New()
	batches := []entity.InventoryBatch{
		lot(pid, "OLD", 5, fixedNow, days(-1)),
		lot(pid, "NEW", 2, fixedNow, days(20)),
	}

	lenient := AllocationRules{Policy: enum.AllocationFEFO}
	assert.Equal(t, 7, lenient.Available(batches, fixedNow))
	plan, err := lenient.Allocate(pid, batches, 1, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "OLD", plan.SingleBatch())

	strict := AllocationRules{Policy: enum.AllocationFEFO, SkipExpired: true}
	assert.Equal(t, 2, strict.Available(batches, fixedNow))
	_, err = strict.Allocate(pid, batches, 3, fixedNow)
	assert.True(t, errors.Is(err, apperror.ErrInsufficientStock))
}

func TestAllocateIgnoresEmptyAndForeignBatches(t *testing.T) {
	pid := uuid.New()
	batches := []entity.InventoryBatch{
		lot(pid, "EMPTY", 0, fixedNow, days(1)),
		lot(uuid.New(), "OTHER", 50, fixedNow, nil),
		lot(pid, "REAL", 2, fixedNow, nil),
	}

	plan, err := AllocationRules{}.Allocate(pid, batches, 2, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "REAL", plan.SingleBatch())
}

func TestAllocateRejectsNonPositiveQuantity(t *testing.T) {
	_, err := AllocationRules{}.Allocate(uuid.New(), nil, 0, fixedNow)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestSortFEFOTieBreaks(t *testing.T) {
	pid := uuid.New()
	purchased := fixedNow.AddDate(0, -1, 0)
	batches := []entity.InventoryBatch{
		lot(pid, "C", 1, fixedNow, days(5)),
		lot(pid, "B", 1, fixedNow, days(5)),
		lot(pid, "A", 1, fixedNow.Add(time.Second), days(5)),
	}
	batches[2].PurchaseDate = &purchased

	AllocationRules{Policy: enum.AllocationFEFO}.Sort(batches)

	got := []string{batches[0].BatchID, batches[1].BatchID, batches[2].BatchID}
	assert.Equal(t, []string{"A", "B", "C"}, got)
}
