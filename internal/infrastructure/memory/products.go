package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	domainRepo "github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/pagination"
	"gorm.io/gorm"
)

type productRepository struct {
	view
}

func (r *productRepository) Create(_ context.Context, product *entity.Product) error {
	return r.write(func(st *state) error {
		if _, taken := st.liveByBarcode(product.Barcode); taken {
			return domainRepo.ErrDuplicateBarcode
		}
		if product.ID == uuid.Nil {
			product.ID = uuid.New()
		}
		now := r.s.stamp()
		product.CreatedAt = now
		product.UpdatedAt = now
		st.products[product.ID] = *product
		return nil
	})
}

func (r *productRepository) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	var out *entity.Product
	r.read(func(st *state) {
		if p, ok := st.products[id]; ok && !p.DeletedAt.Valid {
			out = &p
		}
	})
	return out, nil
}

func (r *productRepository) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	out := make([]entity.Product, 0, len(ids))
	r.read(func(st *state) {
		for _, id := range ids {
			if p, ok := st.products[id]; ok && !p.DeletedAt.Valid {
				out = append(out, p)
			}
		}
	})
	return out, nil
}

func (r *productRepository) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	var out *entity.Product
	r.read(func(st *state) {
		if p, ok := st.liveByBarcode(barcode); ok {
			out = &p
		}
	})
	return out, nil
}

func (r *productRepository) Update(_ context.Context, product *entity.Product) error {
	return r.write(func(st *state) error {
		existing, ok := st.products[product.ID]
		if !ok || existing.DeletedAt.Valid {
			return domainRepo.ErrNotFound
		}
		if other, taken := st.liveByBarcode(product.Barcode); taken && other.ID != product.ID {
			return domainRepo.ErrDuplicateBarcode
		}
		product.CreatedAt = existing.CreatedAt
		product.UpdatedAt = r.s.stamp()
		st.products[product.ID] = *product
		return nil
	})
}

func (r *productRepository) Delete(_ context.Context, id uuid.UUID) error {
	return r.write(func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.DeletedAt.Valid {
			return nil
		}
		p.DeletedAt = gorm.DeletedAt{Time: r.s.stamp(), Valid: true}
		st.products[id] = p
		return nil
	})
}

func (r *productRepository) List(_ context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	search := strings.ToLower(strings.TrimSpace(params.Search))
	var matched []entity.Product
	r.read(func(st *state) {
		for _, p := range st.products {
			if p.DeletedAt.Valid {
				continue
			}
			if params.Category != "" && !strings.EqualFold(p.Category, params.Category) {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Barcode), search) {
				continue
			}
			matched = append(matched, p)
		}
	})
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Name != matched[j].Name {
			return matched[i].Name < matched[j].Name
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	return pagination.Slice(matched, params.Pagination), int64(len(matched)), nil
}

func (r *productRepository) Categories(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	r.read(func(st *state) {
		for _, p := range st.products {
			if !p.DeletedAt.Valid && p.Category != "" {
				seen[p.Category] = true
			}
		}
	})
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (r *productRepository) Count(_ context.Context) (int64, error) {
	var n int64
	r.read(func(st *state) {
		for _, p := range st.products {
			if !p.DeletedAt.Valid {
				n++
			}
		}
	})
	return n, nil
}

func (st *state) liveByBarcode(barcode string) (entity.Product, bool) {
	for _, p := range st.products {
		if !p.DeletedAt.Valid && p.Barcode == barcode {
			return p, true
		}
	}
	return entity.Product{}, false
}
