package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name     string          `json:"name" binding:"max=255"`
	Category string          `json:"category" binding:"max=100"`
	Price    decimal.Decimal `json:"price"`
	Barcode  string          `json:"barcode" binding:"max=100"`
	HSN      string          `json:"hsn" binding:"max=20"`
	CGST     decimal.Decimal `json:"cgst"`
	SGST     decimal.Decimal `json:"sgst"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name     *string          `json:"name" binding:"omitempty,max=255"`
	Category *string          `json:"category" binding:"omitempty,max=100"`
	Price    *decimal.Decimal `json:"price"`
	Barcode  *string          `json:"barcode" binding:"omitempty,max=100"`
	HSN      *string          `json:"hsn" binding:"omitempty,max=20"`
	CGST     *decimal.Decimal `json:"cgst"`
	SGST     *decimal.Decimal `json:"sgst"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page"`
	PerPage  int    `form:"per_page"`
}
