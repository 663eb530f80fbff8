package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Bill is an immutable record of one completed sale.
type Bill struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	BillNumber       string             `gorm:"size:50;uniqueIndex;not null" json:"bill_number"`
	Subtotal         decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	CGSTTotal        decimal.Decimal    `gorm:"column:cgst_total;type:numeric(12,2);not null" json:"cgst_total"`
	SGSTTotal        decimal.Decimal    `gorm:"column:sgst_total;type:numeric(12,2);not null" json:"sgst_total"`
	Tax              decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"tax"`
	Total            decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"total"`
	PaymentMethod    enum.PaymentMethod `gorm:"not null;default:0" json:"payment_method"`
	PaymentReference string             `gorm:"size:100" json:"payment_reference,omitempty"`
	CustomerName     string             `gorm:"size:255" json:"customer_name,omitempty"`
	CustomerPhone    string             `gorm:"size:30" json:"customer_phone,omitempty"`
	CustomerEmail    string             `gorm:"size:255" json:"customer_email,omitempty"`
	CustomerAddress  string             `gorm:"type:text" json:"customer_address,omitempty"`
	CreatedAt        time.Time          `gorm:"index" json:"created_at"`

	Lines []BillLine `gorm:"foreignKey:BillID" json:"lines"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// ItemCount is the number of units sold on the bill.
func (b *Bill) ItemCount() int {
	n := 0
	for _, l := range b.Lines {
		n += l.Quantity
	}
	return n
}

// BillLine snapshots the product as it was sold. Tax amounts are kept at full
// precision; only bill totals are rounded.
type BillLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BillID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"bill_id"`
	Position   int             `gorm:"not null" json:"position"`
	ProductID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	HSN        string          `gorm:"column:hsn;size:20" json:"hsn"`
	CGST       decimal.Decimal `gorm:"column:cgst;type:numeric(5,2);not null" json:"cgst"`
	SGST       decimal.Decimal `gorm:"column:sgst;type:numeric(5,2);not null" json:"sgst"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	CGSTAmount decimal.Decimal `gorm:"column:cgst_amount;type:numeric(18,6);not null" json:"cgst_amount"`
	SGSTAmount decimal.Decimal `gorm:"column:sgst_amount;type:numeric(18,6);not null" json:"sgst_amount"`
	BatchID    string          `gorm:"size:100" json:"batch_id,omitempty"`

	Allocations []BillAllocation `gorm:"foreignKey:BillLineID" json:"allocations"`
}

// BeforeCreate generates a UUID before creating a new bill line
func (l *BillLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillLine model
func (BillLine) TableName() string {
	return "bill_lines"
}

// TaxAmount is the line's CGST + SGST, unrounded.
func (l *BillLine) TaxAmount() decimal.Decimal {
	return l.CGSTAmount.Add(l.SGSTAmount)
}

// BillAllocation records how many units of a line came from which batch.
type BillAllocation struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"-"`
	BillLineID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Location   string    `gorm:"size:100;not null" json:"location"`
	BatchID    string    `gorm:"size:100;not null" json:"batch_id"`
	Quantity   int       `gorm:"not null" json:"quantity"`
}

// BeforeCreate generates a UUID before creating a new allocation
func (a *BillAllocation) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillAllocation model
func (BillAllocation) TableName() string {
	return "bill_allocations"
}
