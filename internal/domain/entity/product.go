package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry. Bills copy the fields they need at sale time, so
// later edits never change a historical bill.
type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name      string          `gorm:"size:255;not null;index" json:"name"`
	Category  string          `gorm:"size:100;index" json:"category"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Barcode   string          `gorm:"size:100;not null;index:idx_products_barcode,unique,where:deleted_at IS NULL" json:"barcode"`
	HSN       string          `gorm:"column:hsn;size:20" json:"hsn"`
	CGST      decimal.Decimal `gorm:"column:cgst;type:numeric(5,2);not null;default:0" json:"cgst"`
	SGST      decimal.Decimal `gorm:"column:sgst;type:numeric(5,2);not null;default:0" json:"sgst"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
