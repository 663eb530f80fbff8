package request

import "github.com/shopspring/decimal"

// CartLineRequest is one product and quantity in a cart.
type CartLineRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// CartRequest carries the client's current cart.
type CartRequest struct {
	Lines []CartLineRequest `json:"lines" binding:"dive"`
}

// CartItemRequest adds to or sets one product on a cart.
type CartItemRequest struct {
	Lines     []CartLineRequest `json:"lines" binding:"dive"`
	ProductID string            `json:"product_id" binding:"required,uuid"`
	Quantity  int               `json:"quantity" binding:"min=0"`
}

// CustomerRequest is optional buyer information.
type CustomerRequest struct {
	Name    string `json:"name" binding:"max=255"`
	Phone   string `json:"phone" binding:"max=30"`
	Email   string `json:"email" binding:"omitempty,email,max=255"`
	Address string `json:"address"`
}

// CheckoutRequest turns a cart into a bill.
type CheckoutRequest struct {
	Lines            []CartLineRequest `json:"lines" binding:"dive"`
	PaymentMethod    string            `json:"payment_method"`
	PaymentReference string            `json:"payment_reference"`
	Customer         CustomerRequest   `json:"customer"`
}

// BillFilterRequest represents bill history filters
type BillFilterRequest struct {
	From          string `form:"from"`
	To            string `form:"to"`
	Search        string `form:"search"`
	PaymentMethod string `form:"payment_method"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}

// UPILinkRequest asks for a payment link for an amount not tied to a bill.
type UPILinkRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note" binding:"max=80"`
}
