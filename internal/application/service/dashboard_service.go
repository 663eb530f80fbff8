package service

import (
	"context"
	"time"

	"github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/money"
	"github.com/shopspring/decimal"
)

const dailySalesDays = 7

// DashboardService provides dashboard statistics
type DashboardService struct {
	billRepo    repository.BillRepository
	productRepo repository.ProductRepository
	inventory   *InventoryService
	now         Clock
}

// DashboardOption customises a DashboardService.
type DashboardOption func(*DashboardService)

// WithDashboardClock pins what the dashboard considers today.
func WithDashboardClock(c Clock) DashboardOption {
	return func(s *DashboardService) { s.now = c }
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	billRepo repository.BillRepository,
	productRepo repository.ProductRepository,
	inventory *InventoryService,
	opts ...DashboardOption,
) *DashboardService {
	s := &DashboardService{
		billRepo:    billRepo,
		productRepo: productRepo,
		inventory:   inventory,
		now:         systemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DashboardStats represents dashboard statistics
type DashboardStats struct {
	TodaySales        decimal.Decimal   `json:"today_sales"`
	TodayBills        int64             `json:"today_bills"`
	YesterdaySales    decimal.Decimal   `json:"yesterday_sales"`
	SalesChange       float64           `json:"sales_change_percent"`
	TotalSales        decimal.Decimal   `json:"total_sales"`
	TotalBills        int64             `json:"total_bills"`
	InventoryValue    decimal.Decimal   `json:"inventory_value"`
	TotalProducts     int64             `json:"total_products"`
	LowStockCount     int               `json:"low_stock_count"`
	ExpiringSoonCount int               `json:"expiring_soon_count"`
	DailySalesData    []DailySalesPoint `json:"daily_sales_data"`
}

// DailySalesPoint represents a daily sales data point
type DailySalesPoint struct {
	Date  string          `json:"date"`
	Sales decimal.Decimal `json:"sales"`
	Bills int64           `json:"bills"`
}

// GetDashboardStats returns dashboard statistics
func (s *DashboardService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := s.now()
	today := startOfDay(now)
	yesterday := today.AddDate(0, 0, -1)
	tomorrow := today.AddDate(0, 0, 1)

	stats := &DashboardStats{}

	todaySum, err := s.billRepo.Summarize(ctx, today, tomorrow)
	if err != nil {
		return nil, storageErr("summarize sales", err)
	}
	stats.TodaySales = money.Round(todaySum.Total)
	stats.TodayBills = todaySum.Count

	yesterdaySum, err := s.billRepo.Summarize(ctx, yesterday, today)
	if err != nil {
		return nil, storageErr("summarize sales", err)
	}
	stats.YesterdaySales = money.Round(yesterdaySum.Total)
	stats.SalesChange = changePercent(todaySum.Total, yesterdaySum.Total)

	all, err := s.billRepo.Summarize(ctx, time.Time{}, time.Time{})
	if err != nil {
		return nil, storageErr("summarize sales", err)
	}
	stats.TotalSales = money.Round(all.Total)
	stats.TotalBills = all.Count

	stats.TotalProducts, err = s.productRepo.Count(ctx)
	if err != nil {
		return nil, storageErr("count products", err)
	}

	batches, err := s.inventory.ListBatches(ctx, nil)
	if err != nil {
		return nil, err
	}
	value := decimal.Zero
	for i := range batches {
		b := &batches[i]
		if b.Product != nil {
			value = value.Add(b.Product.Price.Mul(decimal.NewFromInt(int64(b.Quantity))))
		}
		if b.IsLowStock() {
			stats.LowStockCount++
		}
		if b.ExpiresWithin(now, s.inventory.ExpiringWindow()) {
			stats.ExpiringSoonCount++
		}
	}
	stats.InventoryValue = money.Round(value)

	stats.DailySalesData = make([]DailySalesPoint, 0, dailySalesDays)
	for i := dailySalesDays - 1; i >= 0; i-- {
		from := today.AddDate(0, 0, -i)
		sum, err := s.billRepo.Summarize(ctx, from, from.AddDate(0, 0, 1))
		if err != nil {
			return nil, storageErr("summarize sales", err)
		}
		stats.DailySalesData = append(stats.DailySalesData, DailySalesPoint{
			Date:  from.Format("Jan 02"),
			Sales: money.Round(sum.Total),
			Bills: sum.Count,
		})
	}

	return stats, nil
}

// changePercent is 100 when there were no sales to compare against and some
// today, 0 when both are zero.
func changePercent(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	pct, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return pct
}
