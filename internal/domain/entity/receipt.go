package entity

// ReceiptHeader holds the store header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	TaxID     string `json:"tax_id,omitempty"`
	HasLogo   bool   `json:"has_logo"`
}

// ReceiptItem is one row of the item/qty/rate/amount table.
type ReceiptItem struct {
	Name     string `json:"name"`
	HSN      string `json:"hsn,omitempty"`
	Quantity int    `json:"quantity"`
	Rate     string `json:"rate"`
	Amount   string `json:"amount"`
}

// Receipt is a value object representing a printable receipt.
// Amounts are pre-formatted to two decimals so every renderer prints the same text.
type Receipt struct {
	Header           ReceiptHeader `json:"header"`
	BillNumber       string        `json:"bill_number"`
	Date             string        `json:"date"`
	Time             string        `json:"time"`
	Customer         string        `json:"customer,omitempty"`
	Items            []ReceiptItem `json:"items"`
	Subtotal         string        `json:"subtotal"`
	CGST             string        `json:"cgst"`
	SGST             string        `json:"sgst"`
	Total            string        `json:"total"`
	PaymentMethod    string        `json:"payment_method"`
	PaymentReference string        `json:"payment_reference,omitempty"`
	WidthMM          int           `json:"width_mm"`
	HeightMM         int           `json:"height_mm"`
}
