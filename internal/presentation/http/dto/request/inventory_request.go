package request

// Dates are calendar dates in 2006-01-02 form.

// AddBatchRequest receives a new stock lot.
type AddBatchRequest struct {
	ProductID         string  `json:"product_id" binding:"required,uuid"`
	Location          string  `json:"location" binding:"max=100"`
	BatchID           string  `json:"batch_id" binding:"max=100"`
	Quantity          int     `json:"quantity"`
	LowStockThreshold *int    `json:"low_stock_threshold" binding:"omitempty,min=0"`
	ExpiryDate        *string `json:"expiry_date"`
	PurchaseDate      *string `json:"purchase_date"`
}

// UpdateBatchRequest edits a batch. An empty date string clears it.
type UpdateBatchRequest struct {
	LowStockThreshold *int    `json:"low_stock_threshold" binding:"omitempty,min=0"`
	ExpiryDate        *string `json:"expiry_date"`
	PurchaseDate      *string `json:"purchase_date"`
}

// AdjustStockRequest adds delta (which may be negative) to a batch.
type AdjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason" binding:"max=255"`
}

// BatchFilterRequest narrows the batch listing.
type BatchFilterRequest struct {
	ProductID string `form:"product_id"`
	Days      int    `form:"days"`
}
