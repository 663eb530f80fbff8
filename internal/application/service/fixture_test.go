package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/sangkips/retailpos/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

type fixture struct {
	t         *testing.T
	ctx       context.Context
	now       time.Time
	store     *memory.Store
	products  *ProductService
	inventory *InventoryService
	billing   *BillingService
	settings  *SettingsService
}

func newFixture(t *testing.T, rules AllocationRules, opts ...BillingOption) *fixture {
	t.Helper()
	f := &fixture{t: t, ctx: context.Background(), now: fixedNow}
	clock := func() time.Time { return f.now }

	f.store = memory.NewStore(memory.WithClock(clock))
	f.products = NewProductService(f.store.Products(), f.store.Transactor(), nil)
	f.inventory = NewInventoryService(f.store.Inventory(), f.store.Products(), rules, WithInventoryClock(clock))
	f.billing = NewBillingService(
		f.store.Transactor(),
		f.store.Products(),
		f.store.Inventory(),
		f.store.Bills(),
		rules,
		append([]BillingOption{WithBillingClock(clock)}, opts...)...,
	)
	f.settings = NewSettingsService(f.store.Settings())
	return f
}

func newFEFOFixture(t *testing.T, opts ...BillingOption) *fixture {
	return newFixture(t, AllocationRules{Policy: enum.AllocationFEFO}, opts...)
}

func (f *fixture) product(name, price, cgst, sgst string) *entity.Product {
	f.t.Helper()
	p, err := f.products.CreateProduct(f.ctx, &ProductInput{
		Name:    name,
		Price:   decimal.RequireFromString(price),
		Barcode: "890" + uuid.NewString()[:8],
		HSN:     "3004",
		CGST:    decimal.RequireFromString(cgst),
		SGST:    decimal.RequireFromString(sgst),
	})
	require.NoError(f.t, err)
	return p
}

func (f *fixture) batch(productID uuid.UUID, location, batchID string, qty int, expiry *time.Time) *entity.InventoryBatch {
	f.t.Helper()
	b, err := f.inventory.AddBatch(f.ctx, &AddBatchInput{
		ProductID:  productID,
		Location:   location,
		BatchID:    batchID,
		Quantity:   qty,
		ExpiryDate: expiry,
	})
	require.NoError(f.t, err)
	return b
}

func (f *fixture) quantity(key entity.BatchKey) int {
	f.t.Helper()
	b, err := f.store.Inventory().Get(f.ctx, key)
	require.NoError(f.t, err)
	require.NotNil(f.t, b)
	return b.Quantity
}

func (f *fixture) billCount() int64 {
	f.t.Helper()
	sum, err := f.store.Bills().Summarize(f.ctx, time.Time{}, time.Time{})
	require.NoError(f.t, err)
	return sum.Count
}

func days(n int) *time.Time {
	t := fixedNow.AddDate(0, 0, n)
	return &t
}

func cash(lines ...CartLine) *CheckoutInput {
	return &CheckoutInput{Lines: lines, PaymentMethod: enum.PaymentMethodCash}
}
