package request

// UpdateSettingsRequest changes store settings. Absent fields are kept.
type UpdateSettingsRequest struct {
	Name            *string `json:"name" binding:"omitempty,max=255"`
	Address         *string `json:"address"`
	Phone           *string `json:"phone" binding:"omitempty,max=30"`
	Email           *string `json:"email" binding:"omitempty,email,max=255"`
	TaxID           *string `json:"tax_id" binding:"omitempty,max=30"`
	UPIID           *string `json:"upi_id" binding:"omitempty,max=100"`
	Logo            *string `json:"logo"`
	ReceiptWidthMM  *int    `json:"receipt_width_mm"`
	ReceiptHeightMM *int    `json:"receipt_height_mm"`
}
