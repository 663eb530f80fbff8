package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	domainRepo "github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/pagination"
	"github.com/shopspring/decimal"
)

type billRepository struct {
	view
}

func (r *billRepository) Create(_ context.Context, bill *entity.Bill) error {
	return r.write(func(st *state) error {
		if _, taken := st.billNumbers[bill.BillNumber]; taken {
			return domainRepo.ErrDuplicateBillNumber
		}
		if bill.ID == uuid.Nil {
			bill.ID = uuid.New()
		}
		if bill.CreatedAt.IsZero() {
			bill.CreatedAt = r.s.stamp()
		}
		for i := range bill.Lines {
			line := &bill.Lines[i]
			if line.ID == uuid.Nil {
				line.ID = uuid.New()
			}
			line.BillID = bill.ID
			for j := range line.Allocations {
				alloc := &line.Allocations[j]
				if alloc.ID == uuid.Nil {
					alloc.ID = uuid.New()
				}
				alloc.BillLineID = line.ID
			}
		}
		st.bills[bill.ID] = cloneBill(*bill)
		st.billNumbers[bill.BillNumber] = bill.ID
		return nil
	})
}

func (r *billRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Bill, error) {
	var out *entity.Bill
	r.read(func(st *state) {
		if b, ok := st.bills[id]; ok {
			c := cloneBill(b)
			out = &c
		}
	})
	return out, nil
}

func (r *billRepository) GetByNumber(_ context.Context, number string) (*entity.Bill, error) {
	var out *entity.Bill
	r.read(func(st *state) {
		if id, ok := st.billNumbers[number]; ok {
			c := cloneBill(st.bills[id])
			out = &c
		}
	})
	return out, nil
}

func (r *billRepository) NumberExists(_ context.Context, number string) (bool, error) {
	var exists bool
	r.read(func(st *state) {
		_, exists = st.billNumbers[number]
	})
	return exists, nil
}

func (r *billRepository) List(_ context.Context, params *domainRepo.BillFilterParams) ([]entity.Bill, int64, error) {
	search := strings.ToLower(strings.TrimSpace(params.Search))
	var matched []entity.Bill
	r.read(func(st *state) {
		for _, b := range st.bills {
			if params.From != nil && b.CreatedAt.Before(*params.From) {
				continue
			}
			if params.To != nil && !b.CreatedAt.Before(*params.To) {
				continue
			}
			if params.PaymentMethod != nil && b.PaymentMethod != *params.PaymentMethod {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(b.BillNumber), search) &&
				!strings.Contains(strings.ToLower(b.CustomerName), search) &&
				!strings.Contains(b.CustomerPhone, search) {
				continue
			}
			matched = append(matched, cloneBill(b))
		}
	})
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	return pagination.Slice(matched, params.Pagination), int64(len(matched)), nil
}

func (r *billRepository) ListInRange(_ context.Context, from, to time.Time) ([]entity.Bill, error) {
	var out []entity.Bill
	r.read(func(st *state) {
		for _, b := range st.bills {
			if inRange(b.CreatedAt, from, to) {
				out = append(out, cloneBill(b))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *billRepository) Summarize(_ context.Context, from, to time.Time) (*domainRepo.SalesSummary, error) {
	summary := &domainRepo.SalesSummary{Total: decimal.Zero}
	r.read(func(st *state) {
		for _, b := range st.bills {
			if inRange(b.CreatedAt, from, to) {
				summary.Count++
				summary.Total = summary.Total.Add(b.Total)
			}
		}
	})
	return summary, nil
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

func cloneBill(b entity.Bill) entity.Bill {
	lines := make([]entity.BillLine, len(b.Lines))
	for i, l := range b.Lines {
		allocs := make([]entity.BillAllocation, len(l.Allocations))
		copy(allocs, l.Allocations)
		l.Allocations = allocs
		lines[i] = l
	}
	b.Lines = lines
	return b
}
