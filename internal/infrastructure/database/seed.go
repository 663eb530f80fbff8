package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Seeder fills an empty store with the demo catalog a fresh install ships with.
type Seeder struct {
	Products  repository.ProductRepository
	Inventory repository.InventoryRepository
	Settings  repository.SettingsRepository
	Now       func() time.Time
}

type seedProduct struct {
	product  entity.Product
	location string
	quantity int
	shelfDay int
}

func demoCatalog() []seedProduct {
	return []seedProduct{
		{
			product: entity.Product{
				Name: "Paracetamol", Category: "medical", Price: decimal.RequireFromString("15.50"),
				Barcode: "8901234567890", HSN: "30049099",
				CGST: decimal.NewFromInt(6), SGST: decimal.NewFromInt(6),
			},
			location: "Shelf A", quantity: 100, shelfDay: 365,
		},
		{
			product: entity.Product{
				Name: "USB Cable", Category: "electronics", Price: decimal.RequireFromString("199.99"),
				Barcode: "8901234567891", HSN: "85444999",
				CGST: decimal.NewFromInt(9), SGST: decimal.NewFromInt(9),
			},
			location: "Counter", quantity: 25,
		},
		{
			product: entity.Product{
				Name: "Rice 1kg", Category: "grocery", Price: decimal.RequireFromString("60.00"),
				Barcode: "8901234567892", HSN: "10063090",
				CGST: decimal.RequireFromString("2.5"), SGST: decimal.RequireFromString("2.5"),
			},
			location: "Store Room", quantity: 50, shelfDay: 180,
		},
	}
}

// Seed is idempotent: settings are created when missing, and the demo catalog
// only when withDemoData is set and no product with the same barcode exists.
func (s *Seeder) Seed(ctx context.Context, withDemoData bool) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	existing, err := s.Settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("seed: load settings: %w", err)
	}
	if existing == nil {
		if err := s.Settings.Save(ctx, entity.DefaultStoreSettings()); err != nil {
			return fmt.Errorf("seed: save settings: %w", err)
		}
		log.Info().Msg("seeded default store settings")
	}

	if !withDemoData {
		return nil
	}

	for _, item := range demoCatalog() {
		found, err := s.Products.GetByBarcode(ctx, item.product.Barcode)
		if err != nil {
			return fmt.Errorf("seed: lookup %s: %w", item.product.Barcode, err)
		}
		if found != nil {
			continue
		}

		product := item.product
		if err := s.Products.Create(ctx, &product); err != nil {
			log.Warn().Err(err).Str("barcode", product.Barcode).Msg("failed to seed product")
			continue
		}

		purchased := now().UTC().Truncate(24 * time.Hour)
		batch := &entity.InventoryBatch{
			ProductID:         product.ID,
			Location:          item.location,
			BatchID:           "BATCH-SEED",
			Quantity:          item.quantity,
			LowStockThreshold: entity.DefaultLowStockThreshold,
			PurchaseDate:      &purchased,
		}
		if item.shelfDay > 0 {
			expiry := purchased.AddDate(0, 0, item.shelfDay)
			batch.ExpiryDate = &expiry
		}
		if err := s.Inventory.Create(ctx, batch); err != nil {
			log.Warn().Err(err).Str("barcode", product.Barcode).Msg("failed to seed stock")
		}
	}

	log.Info().Msg("seeded demo catalog")
	return nil
}
