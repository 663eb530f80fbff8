package service

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/sangkips/retailpos/pkg/apperror"
)

// AllocationRules decide which batches serve a sale and in what order.
type AllocationRules struct {
	Policy enum.AllocationPolicy
	// SkipExpired leaves batches past their expiry out of allocation and out
	// of the available figure.
	SkipExpired bool
}

// Take is one planned decrement of one batch.
type Take struct {
	Key      entity.BatchKey `json:"key"`
	Quantity int             `json:"quantity"`
}

// AllocationPlan is the result of a successful Allocate call.
type AllocationPlan struct {
	ProductID uuid.UUID `json:"product_id"`
	Requested int       `json:"requested"`
	Takes     []Take    `json:"takes"`
}

// SingleBatch returns the batch id when one batch serves the whole plan.
func (p *AllocationPlan) SingleBatch() string {
	if len(p.Takes) == 1 {
		return p.Takes[0].Key.BatchID
	}
	return ""
}

// Sort orders batches in place by r.Policy.
func (r AllocationRules) Sort(batches []entity.InventoryBatch) {
	switch r.Policy {
	case enum.AllocationFirstSeen:
		slices.SortStableFunc(batches, compareFirstSeen)
	default:
		slices.SortStableFunc(batches, compareFEFO)
	}
}

// Allocatable reports whether b may serve a sale at now.
func (r AllocationRules) Allocatable(b *entity.InventoryBatch, now time.Time) bool {
	if b.Quantity <= 0 {
		return false
	}
	return !(r.SkipExpired && b.IsExpired(now))
}

// Available sums the quantity of allocatable batches.
func (r AllocationRules) Available(batches []entity.InventoryBatch, now time.Time) int {
	total := 0
	for i := range batches {
		if r.Allocatable(&batches[i], now) {
			total += batches[i].Quantity
		}
	}
	return total
}

// Allocate plans qty units of productID across batches greedily in policy
// order: each batch gives min(its quantity, remaining). It never mutates
// batches. When stock is short it returns an insufficient stock error and no
// plan.
func (r AllocationRules) Allocate(productID uuid.UUID, batches []entity.InventoryBatch, qty int, now time.Time) (*AllocationPlan, error) {
	if qty <= 0 {
		return nil, apperror.NewFieldError("quantity", "Quantity must be greater than zero")
	}

	ordered := make([]entity.InventoryBatch, 0, len(batches))
	for _, b := range batches {
		if b.ProductID == productID && r.Allocatable(&b, now) {
			ordered = append(ordered, b)
		}
	}
	r.Sort(ordered)

	plan := &AllocationPlan{ProductID: productID, Requested: qty}
	remaining := qty
	for _, b := range ordered {
		if remaining == 0 {
			break
		}
		take := min(b.Quantity, remaining)
		plan.Takes = append(plan.Takes, Take{Key: b.Key(), Quantity: take})
		remaining -= take
	}

	if remaining > 0 {
		return nil, apperror.NewInsufficientStockError([]apperror.StockShortage{{
			ProductID: productID,
			Requested: qty,
			Available: qty - remaining,
			Shortfall: remaining,
		}})
	}
	return plan, nil
}

func compareFEFO(a, b entity.InventoryBatch) int {
	if c := compareOptionalTime(a.ExpiryDate, b.ExpiryDate); c != 0 {
		return c
	}
	if c := compareOptionalTime(a.PurchaseDate, b.PurchaseDate); c != 0 {
		return c
	}
	return compareFirstSeen(a, b)
}

func compareFirstSeen(a, b entity.InventoryBatch) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	if c := strings.Compare(a.Location, b.Location); c != 0 {
		return c
	}
	return strings.Compare(a.BatchID, b.BatchID)
}

// compareOptionalTime sorts set times ascending and nil last.
func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return a.Compare(*b)
	}
}
