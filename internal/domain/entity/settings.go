package entity

import (
	"time"
)

const (
	// StoreSettingsID is the fixed key of the singleton settings row.
	StoreSettingsID = "storeInfo"

	DefaultReceiptWidthMM  = 80
	DefaultReceiptHeightMM = 140
)

// StoreSettings is the store identity printed on receipts and used for UPI
// payment links. There is exactly one row.
type StoreSettings struct {
	ID              string    `gorm:"size:20;primaryKey" json:"-"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	Address         string    `gorm:"type:text" json:"address"`
	Phone           string    `gorm:"size:30" json:"phone"`
	Email           string    `gorm:"size:255" json:"email"`
	TaxID           string    `gorm:"size:30" json:"tax_id"`
	UPIID           string    `gorm:"column:upi_id;size:100" json:"upi_id"`
	Logo            string    `gorm:"type:text" json:"logo,omitempty"`
	ReceiptWidthMM  int       `gorm:"column:receipt_width_mm;not null;default:80" json:"receipt_width_mm"`
	ReceiptHeightMM int       `gorm:"column:receipt_height_mm;not null;default:140" json:"receipt_height_mm"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the table name for the StoreSettings model
func (StoreSettings) TableName() string {
	return "store_settings"
}

// DefaultStoreSettings is what a fresh install starts with.
func DefaultStoreSettings() *StoreSettings {
	return &StoreSettings{
		ID:              StoreSettingsID,
		Name:            "My Retail Store",
		Address:         "123 Market Street, City",
		Phone:           "9876543210",
		Email:           "store@example.com",
		TaxID:           "22AAAAA0000A1Z5",
		UPIID:           "store@upi",
		ReceiptWidthMM:  DefaultReceiptWidthMM,
		ReceiptHeightMM: DefaultReceiptHeightMM,
	}
}
