package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/entity"
	domainRepo "github.com/sangkips/retailpos/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository creates a new inventory batch repository
func NewInventoryRepository(db *gorm.DB) domainRepo.InventoryRepository {
	return &inventoryRepository{db: db}
}

func keyCondition(key entity.BatchKey) (string, []interface{}) {
	return "product_id = ? AND location = ? AND batch_id = ?",
		[]interface{}{key.ProductID, key.Location, key.BatchID}
}

func (r *inventoryRepository) Create(ctx context.Context, batch *entity.InventoryBatch) error {
	err := r.db.WithContext(ctx).Omit("Product").Create(batch).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainRepo.ErrDuplicateBatch
	}
	return err
}

func (r *inventoryRepository) Get(ctx context.Context, key entity.BatchKey) (*entity.InventoryBatch, error) {
	var batch entity.InventoryBatch
	cond, args := keyCondition(key)
	err := r.db.WithContext(ctx).Where(cond, args...).First(&batch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &batch, err
}

// Update writes the batch's descriptive fields. Quantity only changes through
// AdjustQuantity.
func (r *inventoryRepository) Update(ctx context.Context, batch *entity.InventoryBatch) error {
	cond, args := keyCondition(batch.Key())
	result := r.db.WithContext(ctx).Model(&entity.InventoryBatch{}).
		Where(cond, args...).
		Updates(map[string]interface{}{
			"low_stock_threshold": batch.LowStockThreshold,
			"expiry_date":         batch.ExpiryDate,
			"purchase_date":       batch.PurchaseDate,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *inventoryRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]entity.InventoryBatch, error) {
	var batches []entity.InventoryBatch
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&batches).Error
	return batches, err
}

// ListByProductForUpdate locks the product's batch rows (SELECT ... FOR UPDATE)
// so concurrent checkouts serialize on the same stock.
func (r *inventoryRepository) ListByProductForUpdate(ctx context.Context, productID uuid.UUID) ([]entity.InventoryBatch, error) {
	var batches []entity.InventoryBatch
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&batches).Error
	return batches, err
}

func (r *inventoryRepository) ListAll(ctx context.Context) ([]entity.InventoryBatch, error) {
	var batches []entity.InventoryBatch
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = inventory.product_id AND products.deleted_at IS NULL").
		Preload("Product").
		Order("inventory.created_at ASC").
		Find(&batches).Error
	return batches, err
}

// AdjustQuantity applies delta atomically only if the result stays non-negative.
// Uses: UPDATE inventory SET quantity = quantity + delta WHERE <key> AND quantity + delta >= 0
func (r *inventoryRepository) AdjustQuantity(ctx context.Context, key entity.BatchKey, delta int) (bool, error) {
	cond, args := keyCondition(key)
	result := r.db.WithContext(ctx).Model(&entity.InventoryBatch{}).
		Where(cond, args...).
		Where("quantity + ? >= 0", delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *inventoryRepository) DeleteByProduct(ctx context.Context, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&entity.InventoryBatch{}).Error
}
