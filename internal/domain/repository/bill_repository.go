package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/sangkips/retailpos/pkg/pagination"
	"github.com/shopspring/decimal"
)

// BillRepository is append-only: bills are created and read, never updated.
type BillRepository interface {
	Create(ctx context.Context, bill *entity.Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error)
	GetByNumber(ctx context.Context, number string) (*entity.Bill, error)
	NumberExists(ctx context.Context, number string) (bool, error)
	List(ctx context.Context, params *BillFilterParams) ([]entity.Bill, int64, error)
	// ListInRange returns bills with lines, created in [from, to), oldest first.
	ListInRange(ctx context.Context, from, to time.Time) ([]entity.Bill, error)
	// Summarize totals bills created in [from, to). Zero times leave that end open.
	Summarize(ctx context.Context, from, to time.Time) (*SalesSummary, error)
}

// BillFilterParams filters bill history. To is exclusive.
type BillFilterParams struct {
	Pagination    *pagination.PaginationParams
	From          *time.Time
	To            *time.Time
	Search        string
	PaymentMethod *enum.PaymentMethod
}

// SalesSummary is an aggregate over a set of bills.
type SalesSummary struct {
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}
