package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/utils"
)

// InventoryService is the batch ledger: per (product, location, batch) stock.
type InventoryService struct {
	inventoryRepo  repository.InventoryRepository
	productRepo    repository.ProductRepository
	rules          AllocationRules
	expiringWindow time.Duration
	now            Clock
}

// InventoryOption customises an InventoryService.
type InventoryOption func(*InventoryService)

// WithInventoryClock pins the ledger's notion of now.
func WithInventoryClock(c Clock) InventoryOption {
	return func(s *InventoryService) { s.now = c }
}

// WithExpiringWindow overrides the default 30 day expiring-soon window.
func WithExpiringWindow(d time.Duration) InventoryOption {
	return func(s *InventoryService) {
		if d > 0 {
			s.expiringWindow = d
		}
	}
}

// NewInventoryService creates a new inventory service using rules for
// ordering and availability.
func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	productRepo repository.ProductRepository,
	rules AllocationRules,
	opts ...InventoryOption,
) *InventoryService {
	s := &InventoryService{
		inventoryRepo:  inventoryRepo,
		productRepo:    productRepo,
		rules:          rules,
		expiringWindow: entity.ExpiringSoonWindow,
		now:            systemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListBatches returns a product's batches in allocation order. With a nil
// productID it returns every batch, grouped by product name.
func (s *InventoryService) ListBatches(ctx context.Context, productID *uuid.UUID) ([]entity.InventoryBatch, error) {
	if productID != nil {
		if _, err := s.requireProduct(ctx, *productID); err != nil {
			return nil, err
		}
		batches, err := s.inventoryRepo.ListByProduct(ctx, *productID)
		if err != nil {
			return nil, storageErr("list batches", err)
		}
		s.rules.Sort(batches)
		return batches, nil
	}

	batches, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	s.sortGrouped(batches)
	return batches, nil
}

// AddBatchInput represents the input for receiving a new batch
type AddBatchInput struct {
	ProductID         uuid.UUID
	Location          string
	BatchID           string
	Quantity          int
	LowStockThreshold *int
	ExpiryDate        *time.Time
	PurchaseDate      *time.Time
}

// AddBatch records a new stock lot. The batch id is generated when empty.
func (s *InventoryService) AddBatch(ctx context.Context, input *AddBatchInput) (*entity.InventoryBatch, error) {
	input.Location = strings.TrimSpace(input.Location)
	input.BatchID = strings.TrimSpace(input.BatchID)

	var errs []apperror.FieldError
	if input.Location == "" {
		errs = append(errs, apperror.FieldError{Field: "location", Message: "Location is required"})
	}
	if input.Quantity <= 0 {
		errs = append(errs, apperror.FieldError{Field: "quantity", Message: "Quantity must be greater than zero"})
	}
	if input.LowStockThreshold != nil && *input.LowStockThreshold < 0 {
		errs = append(errs, apperror.FieldError{Field: "low_stock_threshold", Message: "Threshold cannot be negative"})
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError(errs)
	}

	product, err := s.requireProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	threshold := entity.DefaultLowStockThreshold
	if input.LowStockThreshold != nil {
		threshold = *input.LowStockThreshold
	}
	batchID := input.BatchID
	if batchID == "" {
		batchID = utils.GenerateBatchID(s.now())
	}

	batch := &entity.InventoryBatch{
		ProductID:         product.ID,
		Location:          input.Location,
		BatchID:           batchID,
		Quantity:          input.Quantity,
		LowStockThreshold: threshold,
		ExpiryDate:        input.ExpiryDate,
		PurchaseDate:      input.PurchaseDate,
	}
	if err := s.inventoryRepo.Create(ctx, batch); err != nil {
		return nil, storageErr("add batch", err)
	}
	batch.Product = product

	log.Info().
		Str("batch", batch.Key().String()).
		Int("quantity", batch.Quantity).
		Msg("batch received")
	return batch, nil
}

// UpdateBatchInput changes the descriptive fields of a batch. Nil fields are
// kept; Clear* removes an optional date.
type UpdateBatchInput struct {
	LowStockThreshold *int
	ExpiryDate        *time.Time
	ClearExpiry       bool
	PurchaseDate      *time.Time
	ClearPurchase     bool
}

// UpdateBatch edits threshold and dates. Quantity only moves through Adjust.
func (s *InventoryService) UpdateBatch(ctx context.Context, key entity.BatchKey, input *UpdateBatchInput) (*entity.InventoryBatch, error) {
	if input.LowStockThreshold != nil && *input.LowStockThreshold < 0 {
		return nil, apperror.NewFieldError("low_stock_threshold", "Threshold cannot be negative")
	}

	batch, err := s.getBatch(ctx, key)
	if err != nil {
		return nil, err
	}
	if input.LowStockThreshold != nil {
		batch.LowStockThreshold = *input.LowStockThreshold
	}
	switch {
	case input.ClearExpiry:
		batch.ExpiryDate = nil
	case input.ExpiryDate != nil:
		batch.ExpiryDate = input.ExpiryDate
	}
	switch {
	case input.ClearPurchase:
		batch.PurchaseDate = nil
	case input.PurchaseDate != nil:
		batch.PurchaseDate = input.PurchaseDate
	}

	if err := s.inventoryRepo.Update(ctx, batch); err != nil {
		return nil, storageErr("update batch", err)
	}
	return s.getBatch(ctx, key)
}

// Adjust adds delta to one batch. The change is applied with a conditional
// update so the quantity can never go below zero, even when two adjustments
// race.
func (s *InventoryService) Adjust(ctx context.Context, key entity.BatchKey, delta int, reason string) (*entity.InventoryBatch, error) {
	if delta == 0 {
		return nil, apperror.NewFieldError("delta", "Delta must not be zero")
	}

	batch, err := s.getBatch(ctx, key)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		ok, err := s.inventoryRepo.AdjustQuantity(ctx, key, delta)
		if err != nil {
			return nil, storageErr("adjust stock", err)
		}
		if ok {
			break
		}

		// re-read: the guard or a concurrent delete rejected the change
		current, err := s.inventoryRepo.Get(ctx, key)
		if err != nil {
			return nil, storageErr("adjust stock", err)
		}
		if current == nil {
			return nil, apperror.NewNotFoundError("Batch")
		}
		shortfall := -(current.Quantity + delta)
		if shortfall <= 0 && attempt == 0 {
			// stock moved in between and the change fits now
			continue
		}
		name := ""
		if p, _ := s.productRepo.GetByID(ctx, key.ProductID); p != nil {
			name = p.Name
		}
		return nil, apperror.NewInsufficientStockError([]apperror.StockShortage{{
			ProductID: key.ProductID,
			Name:      name,
			Requested: -delta,
			Available: current.Quantity,
			Shortfall: max(0, shortfall),
		}})
	}

	log.Info().
		Str("batch", key.String()).
		Int("delta", delta).
		Int("before", batch.Quantity).
		Str("reason", reason).
		Msg("stock adjusted")
	return s.getBatch(ctx, key)
}

// Available is the quantity a sale of productID can draw on right now.
func (s *InventoryService) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	batches, err := s.inventoryRepo.ListByProduct(ctx, productID)
	if err != nil {
		return 0, storageErr("load stock", err)
	}
	return s.rules.Available(batches, s.now()), nil
}

// LowStock returns batches at or under their threshold.
func (s *InventoryService) LowStock(ctx context.Context) ([]entity.InventoryBatch, error) {
	return s.filter(ctx, func(b *entity.InventoryBatch, _ time.Time) bool {
		return b.IsLowStock()
	})
}

// Expiring returns unexpired batches whose expiry falls within the window.
// A zero window uses the configured default.
func (s *InventoryService) Expiring(ctx context.Context, within time.Duration) ([]entity.InventoryBatch, error) {
	if within <= 0 {
		within = s.expiringWindow
	}
	batches, err := s.filter(ctx, func(b *entity.InventoryBatch, now time.Time) bool {
		return b.ExpiresWithin(now, within)
	})
	if err != nil {
		return nil, err
	}
	sortByExpiry(batches)
	return batches, nil
}

// Expired returns batches past their expiry date.
func (s *InventoryService) Expired(ctx context.Context) ([]entity.InventoryBatch, error) {
	batches, err := s.filter(ctx, func(b *entity.InventoryBatch, now time.Time) bool {
		return b.IsExpired(now)
	})
	if err != nil {
		return nil, err
	}
	sortByExpiry(batches)
	return batches, nil
}

// ExpiringWindow is the default window used by Expiring.
func (s *InventoryService) ExpiringWindow() time.Duration {
	return s.expiringWindow
}

func (s *InventoryService) filter(ctx context.Context, keep func(*entity.InventoryBatch, time.Time) bool) ([]entity.InventoryBatch, error) {
	all, err := s.listAll(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]entity.InventoryBatch, 0)
	for i := range all {
		if keep(&all[i], now) {
			out = append(out, all[i])
		}
	}
	s.sortGrouped(out)
	return out, nil
}

// listAll returns every batch of a live product with Product populated.
func (s *InventoryService) listAll(ctx context.Context) ([]entity.InventoryBatch, error) {
	batches, err := s.inventoryRepo.ListAll(ctx)
	if err != nil {
		return nil, storageErr("list batches", err)
	}

	var missing []uuid.UUID
	seen := map[uuid.UUID]bool{}
	for _, b := range batches {
		if b.Product == nil && !seen[b.ProductID] {
			seen[b.ProductID] = true
			missing = append(missing, b.ProductID)
		}
	}
	if len(missing) > 0 {
		products, err := s.productRepo.GetByIDs(ctx, missing)
		if err != nil {
			return nil, storageErr("list batches", err)
		}
		byID := make(map[uuid.UUID]*entity.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}
		kept := batches[:0]
		for _, b := range batches {
			if b.Product == nil {
				b.Product = byID[b.ProductID]
			}
			if b.Product != nil {
				kept = append(kept, b)
			}
		}
		batches = kept
	}
	return batches, nil
}

// sortGrouped orders by product name, then product id, then policy order.
func (s *InventoryService) sortGrouped(batches []entity.InventoryBatch) {
	s.rules.Sort(batches)
	sort.SliceStable(batches, func(i, j int) bool {
		ni, nj := productName(&batches[i]), productName(&batches[j])
		if ni != nj {
			return ni < nj
		}
		return batches[i].ProductID.String() < batches[j].ProductID.String()
	})
}

func productName(b *entity.InventoryBatch) string {
	if b.Product == nil {
		return ""
	}
	return b.Product.Name
}

func sortByExpiry(batches []entity.InventoryBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		return compareOptionalTime(batches[i].ExpiryDate, batches[j].ExpiryDate) < 0
	})
}

func (s *InventoryService) requireProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr("load product", err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

func (s *InventoryService) getBatch(ctx context.Context, key entity.BatchKey) (*entity.InventoryBatch, error) {
	batch, err := s.inventoryRepo.Get(ctx, key)
	if err != nil {
		return nil, storageErr("load batch", err)
	}
	if batch == nil {
		return nil, apperror.NewNotFoundError("Batch")
	}
	return batch, nil
}
