package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/enum"
)

const (
	// DefaultLowStockThreshold applies when a batch is created without one.
	DefaultLowStockThreshold = 5
	// ExpiringSoonWindow is how far ahead IsExpiringSoon looks.
	ExpiringSoonWindow = 30 * 24 * time.Hour
)

// BatchKey identifies one stock lot of a product at one location.
type BatchKey struct {
	ProductID uuid.UUID `json:"product_id"`
	Location  string    `json:"location"`
	BatchID   string    `json:"batch_id"`
}

func (k BatchKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ProductID, k.Location, k.BatchID)
}

// InventoryBatch is keyed by (product_id, location, batch_id).
type InventoryBatch struct {
	ProductID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"product_id"`
	Location          string     `gorm:"size:100;primaryKey" json:"location"`
	BatchID           string     `gorm:"size:100;primaryKey" json:"batch_id"`
	Quantity          int        `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	LowStockThreshold int        `gorm:"not null;default:5" json:"low_stock_threshold"`
	ExpiryDate        *time.Time `gorm:"index" json:"expiry_date,omitempty"`
	PurchaseDate      *time.Time `json:"purchase_date,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName returns the table name for the InventoryBatch model
func (InventoryBatch) TableName() string {
	return "inventory"
}

func (b *InventoryBatch) Key() BatchKey {
	return BatchKey{ProductID: b.ProductID, Location: b.Location, BatchID: b.BatchID}
}

// IsLowStock includes equality with the threshold.
func (b *InventoryBatch) IsLowStock() bool {
	return b.Quantity <= b.LowStockThreshold
}

func (b *InventoryBatch) IsExpired(now time.Time) bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(now)
}

// IsExpiringSoon is true for batches that have not expired yet but will within
// ExpiringSoonWindow.
func (b *InventoryBatch) IsExpiringSoon(now time.Time) bool {
	return b.ExpiresWithin(now, ExpiringSoonWindow)
}

// ExpiresWithin is IsExpiringSoon with a caller-chosen window.
func (b *InventoryBatch) ExpiresWithin(now time.Time, window time.Duration) bool {
	if b.ExpiryDate == nil || b.IsExpired(now) {
		return false
	}
	return !b.ExpiryDate.After(now.Add(window))
}

func (b *InventoryBatch) ExpiryStatus(now time.Time) enum.ExpiryStatus {
	switch {
	case b.ExpiryDate == nil:
		return enum.ExpiryStatusNone
	case b.IsExpired(now):
		return enum.ExpiryStatusExpired
	case b.IsExpiringSoon(now):
		return enum.ExpiryStatusExpiringSoon
	default:
		return enum.ExpiryStatusFresh
	}
}
