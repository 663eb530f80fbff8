package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/spreadsheet"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCache records cache traffic so tests can see invalidation.
type countingCache struct {
	items       map[string]entity.Product
	hits        int
	invalidated []string
}

func newCountingCache() *countingCache {
	return &countingCache{items: map[string]entity.Product{}}
}

func (c *countingCache) Get(_ context.Context, barcode string) (*entity.Product, bool) {
	p, ok := c.items[barcode]
	if ok {
		c.hits++
	}
	return &p, ok
}

func (c *countingCache) Set(_ context.Context, p *entity.Product) {
	c.items[p.Barcode] = *p
}

func (c *countingCache) Invalidate(_ context.Context, barcodes ...string) {
	for _, b := range barcodes {
		delete(c.items, b)
		c.invalidated = append(c.invalidated, b)
	}
}

func (c *countingCache) Ping(context.Context) error { return nil }

func TestCreateProductValidation(t *testing.T) {
	f := newFEFOFixture(t)

	_, err := f.products.CreateProduct(f.ctx, &ProductInput{
		Name:    " ",
		Price:   decimal.RequireFromString("10.005"),
		Barcode: "",
		CGST:    decimal.NewFromInt(101),
		SGST:    decimal.RequireFromString("-1"),
	})
	require.Error(t, err)

	fields := map[string]bool{}
	for _, fe := range apperror.GetAppError(err).Errors {
		fields[fe.Field] = true
	}
	assert.Equal(t, map[string]bool{"name": true, "price": true, "barcode": true, "cgst": true, "sgst": true}, fields)
}

func TestCreateProductDuplicateBarcode(t *testing.T) {
	f := newFEFOFixture(t)
	input := func() *ProductInput {
		return &ProductInput{Name: "Soap", Price: decimal.NewFromInt(30), Barcode: "8901 234"}
	}

	p, err := f.products.CreateProduct(f.ctx, input())
	require.NoError(t, err)
	assert.Equal(t, "8901234", p.Barcode)

	_, err = f.products.CreateProduct(f.ctx, input())
	assert.True(t, errors.Is(err, apperror.ErrConflict))
}

func TestUpdateProduct(t *testing.T) {
	f := newFEFOFixture(t)
	a := f.product("Soap", "30.00", "9", "9")
	b := f.product("Oil", "120.00", "2.5", "2.5")

	price := decimal.RequireFromString("32.50")
	updated, err := f.products.UpdateProduct(f.ctx, a.ID, &UpdateProductInput{Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))
	assert.Equal(t, "Soap", updated.Name)

	_, err = f.products.UpdateProduct(f.ctx, a.ID, &UpdateProductInput{Barcode: &b.Barcode})
	assert.True(t, errors.Is(err, apperror.ErrConflict))

	zero := decimal.Zero
	_, err = f.products.UpdateProduct(f.ctx, a.ID, &UpdateProductInput{Price: &zero})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestDeleteProductRemovesBatches(t *testing.T) {
	f := newFEFOFixture(t)
	p := f.product("Soap", "30.00", "0", "0")
	f.batch(p.ID, "Main", "S1", 10, nil)
	f.batch(p.ID, "Back", "S2", 5, nil)

	require.NoError(t, f.products.DeleteProduct(f.ctx, p.ID))

	_, err := f.products.GetProduct(f.ctx, p.ID)
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	left, err := f.store.Inventory().ListByProduct(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	// the barcode is free again
	_, err = f.products.CreateProduct(f.ctx, &ProductInput{Name: "Soap", Price: decimal.NewFromInt(30), Barcode: p.Barcode})
	assert.NoError(t, err)
}

func TestGetProductByBarcodeUsesCache(t *testing.T) {
	f := newFEFOFixture(t)
	prices := newCountingCache()
	svc := NewProductService(f.store.Products(), f.store.Transactor(), prices)

	p, err := svc.CreateProduct(f.ctx, &ProductInput{Name: "Soap", Price: decimal.NewFromInt(30), Barcode: "111"})
	require.NoError(t, err)

	_, err = svc.GetProductByBarcode(f.ctx, "111")
	require.NoError(t, err)
	got, err := svc.GetProductByBarcode(f.ctx, "111")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, 1, prices.hits)

	price := decimal.NewFromInt(35)
	_, err = svc.UpdateProduct(f.ctx, p.ID, &UpdateProductInput{Price: &price})
	require.NoError(t, err)
	assert.Contains(t, prices.invalidated, "111")

	_, err = svc.GetProductByBarcode(f.ctx, "999")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestListProductsAndCategories(t *testing.T) {
	f := newFEFOFixture(t)
	for _, in := range []ProductInput{
		{Name: "Soap", Category: "Personal Care", Price: decimal.NewFromInt(30), Barcode: "1"},
		{Name: "Shampoo", Category: "Personal Care", Price: decimal.NewFromInt(120), Barcode: "2"},
		{Name: "Rice", Category: "Grocery", Price: decimal.NewFromInt(60), Barcode: "3"},
	} {
		_, err := f.products.CreateProduct(f.ctx, &in)
		require.NoError(t, err)
	}

	res, err := f.products.ListProducts(f.ctx, &repository.ProductFilterParams{Category: "Personal Care"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Shampoo", res.Items[0].Name)

	res, err = f.products.ListProducts(f.ctx, &repository.ProductFilterParams{Search: "ric"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	cats, err := f.products.Categories(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Grocery", "Personal Care"}, cats)
}

func TestImportProducts(t *testing.T) {
	f := newFEFOFixture(t)
	_, err := f.products.CreateProduct(f.ctx, &ProductInput{Name: "Soap", Price: decimal.NewFromInt(30), Barcode: "1"})
	require.NoError(t, err)

	res, err := f.products.ImportProducts(f.ctx, []spreadsheet.ProductRow{
		{Line: 2, Name: "Soap", Price: "30", Barcode: "1"},
		{Line: 3, Name: "Rice", Price: "60.00", Barcode: "3", CGST: "2.5%", SGST: "2.5"},
		{Line: 4, Name: "Broken", Price: "abc", Barcode: "4"},
		{Line: 5, Name: "", Price: "5", Barcode: "5"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Rows, 4)
	assert.Equal(t, "skipped", res.Rows[0].Status)
	assert.Equal(t, "created", res.Rows[1].Status)
	assert.Equal(t, "price", res.Rows[2].Errors[0].Field)
	assert.Equal(t, "name", res.Rows[3].Errors[0].Field)

	rice, err := f.products.GetProductByBarcode(f.ctx, "3")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("2.5").Equal(rice.CGST))
}
