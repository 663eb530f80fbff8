package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	f := newFEFOFixture(t)
	p := f.product("Shampoo", "100.00", "9", "9")
	f.batch(p.ID, "Main", "S1", 10, days(5))
	f.batch(p.ID, "Back", "S2", 3, nil)

	f.now = fixedNow.AddDate(0, 0, -1)
	_, err := f.billing.Checkout(f.ctx, cash(CartLine{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	f.now = fixedNow
	_, err = f.billing.Checkout(f.ctx, cash(CartLine{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)

	clock := func() time.Time { return f.now }
	svc := NewDashboardService(f.store.Bills(), f.store.Products(), f.inventory, WithDashboardClock(clock))
	stats, err := svc.GetDashboardStats(f.ctx)
	require.NoError(t, err)

	assert.True(t, dec("236.00").Equal(stats.TodaySales))
	assert.Equal(t, int64(1), stats.TodayBills)
	assert.True(t, dec("118.00").Equal(stats.YesterdaySales))
	assert.Equal(t, 100.0, stats.SalesChange)
	assert.True(t, dec("354.00").Equal(stats.TotalSales))
	assert.Equal(t, int64(2), stats.TotalBills)
	assert.Equal(t, int64(1), stats.TotalProducts)

	// S1 had 10 and served 3 units, S2 still has 3
	assert.True(t, dec("1000.00").Equal(stats.InventoryValue), stats.InventoryValue.String())
	assert.Equal(t, 1, stats.LowStockCount)
	assert.Equal(t, 1, stats.ExpiringSoonCount)

	require.Len(t, stats.DailySalesData, 7)
	assert.True(t, dec("236.00").Equal(stats.DailySalesData[6].Sales))
	assert.True(t, dec("118.00").Equal(stats.DailySalesData[5].Sales))
	assert.True(t, stats.DailySalesData[0].Sales.IsZero())
}

func TestChangePercent(t *testing.T) {
	assert.Equal(t, 0.0, changePercent(dec("0"), dec("0")))
	assert.Equal(t, 100.0, changePercent(dec("5"), dec("0")))
	assert.Equal(t, -50.0, changePercent(dec("50"), dec("100")))
	assert.Equal(t, 33.3, changePercent(dec("4"), dec("3")))
}
