package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	domainRepo "github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/pagination"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type billRepository struct {
	db *gorm.DB
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *gorm.DB) domainRepo.BillRepository {
	return &billRepository{db: db}
}

func withLines(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Lines.Allocations")
}

// Create inserts the bill with its lines and allocations in one statement
// batch. A taken bill number surfaces as ErrDuplicateBillNumber.
func (r *billRepository) Create(ctx context.Context, bill *entity.Bill) error {
	err := r.db.WithContext(ctx).Create(bill).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicateBillNumber
	}
	return err
}

func (r *billRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	var bill entity.Bill
	err := withLines(r.db.WithContext(ctx)).First(&bill, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) GetByNumber(ctx context.Context, number string) (*entity.Bill, error) {
	var bill entity.Bill
	err := withLines(r.db.WithContext(ctx)).First(&bill, "bill_number = ?", number).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &bill, err
}

func (r *billRepository) NumberExists(ctx context.Context, number string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Where("bill_number = ?", number).
		Count(&n).Error
	return n > 0, err
}

func (r *billRepository) List(ctx context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	var bills []entity.Bill
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Bill{})

	var from, to time.Time
	if params.From != nil {
		from = *params.From
	}
	if params.To != nil {
		to = *params.To
	}
	query = query.Scopes(CreatedBetween(from, to))
	if params.PaymentMethod != nil {
		query = query.Where("payment_method = ?", *params.PaymentMethod)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("bill_number ILIKE ? OR customer_name ILIKE ? OR customer_phone LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	err := withLines(query).
		Scopes(Paginate(params.Pagination)).
		Order("created_at DESC").
		Find(&bills).Error

	return bills, total, err
}

func (r *billRepository) ListInRange(ctx context.Context, from, to time.Time) ([]entity.Bill, error) {
	var bills []entity.Bill
	err := withLines(r.db.WithContext(ctx)).
		Scopes(CreatedBetween(from, to)).
		Order("created_at ASC").
		Find(&bills).Error
	return bills, err
}

func (r *billRepository) Summarize(ctx context.Context, from, to time.Time) (*domainRepo.SalesSummary, error) {
	var row struct {
		Count int64
		Total decimal.NullDecimal
	}

	query := r.db.WithContext(ctx).Model(&entity.Bill{}).
		Select("COUNT(*) AS count, SUM(total) AS total").
		Scopes(CreatedBetween(from, to))
	if err := query.Scan(&row).Error; err != nil {
		return nil, err
	}

	summary := &domainRepo.SalesSummary{Count: row.Count, Total: decimal.Zero}
	if row.Total.Valid {
		summary.Total = row.Total.Decimal
	}
	return summary, nil
}
