package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/application/service"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/request"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/response"
	"github.com/sangkips/retailpos/pkg/apperror"
)

// InventoryHandler serves stock batches and stock alerts.
type InventoryHandler struct {
	inventoryService *service.InventoryService
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService}
}

// ListBatches lists batches, optionally for one product (?product_id=).
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	var filter request.BatchFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	var productID *uuid.UUID
	if filter.ProductID != "" {
		id, err := uuid.Parse(filter.ProductID)
		if err != nil {
			response.BadRequest(c, "Invalid product_id format")
			return
		}
		productID = &id
	}

	batches, err := h.inventoryService.ListBatches(c.Request.Context(), productID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batches retrieved successfully", batches)
}

// ListProductBatches lists the batches of the product in the path.
func (h *InventoryHandler) ListProductBatches(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	batches, err := h.inventoryService.ListBatches(c.Request.Context(), &id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batches retrieved successfully", batches)
}

// AddBatch receives new stock.
func (h *InventoryHandler) AddBatch(c *gin.Context) {
	var req request.AddBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.AddBatchInput{
		ProductID:         uuid.MustParse(req.ProductID),
		Location:          req.Location,
		BatchID:           req.BatchID,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
	}

	var fieldErrs []apperror.FieldError
	if req.ExpiryDate != nil {
		d, err := parseDate("expiry_date", *req.ExpiryDate)
		fieldErrs = appendFieldErrors(fieldErrs, err)
		input.ExpiryDate = d
	}
	if req.PurchaseDate != nil {
		d, err := parseDate("purchase_date", *req.PurchaseDate)
		fieldErrs = appendFieldErrors(fieldErrs, err)
		input.PurchaseDate = d
	}
	if len(fieldErrs) > 0 {
		response.Error(c, apperror.NewValidationError(fieldErrs))
		return
	}

	batch, err := h.inventoryService.AddBatch(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Stock added successfully", batch)
}

// UpdateBatch edits threshold and dates of one batch.
func (h *InventoryHandler) UpdateBatch(c *gin.Context) {
	key, ok := batchKey(c)
	if !ok {
		return
	}

	var req request.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.UpdateBatchInput{LowStockThreshold: req.LowStockThreshold}
	var fieldErrs []apperror.FieldError
	if req.ExpiryDate != nil {
		d, err := parseDate("expiry_date", *req.ExpiryDate)
		fieldErrs = appendFieldErrors(fieldErrs, err)
		input.ExpiryDate = d
		input.ClearExpiry = err == nil && d == nil
	}
	if req.PurchaseDate != nil {
		d, err := parseDate("purchase_date", *req.PurchaseDate)
		fieldErrs = appendFieldErrors(fieldErrs, err)
		input.PurchaseDate = d
		input.ClearPurchase = err == nil && d == nil
	}
	if len(fieldErrs) > 0 {
		response.Error(c, apperror.NewValidationError(fieldErrs))
		return
	}

	batch, err := h.inventoryService.UpdateBatch(c.Request.Context(), key, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Batch updated successfully", batch)
}

// Adjust applies a signed stock correction to one batch.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	key, ok := batchKey(c)
	if !ok {
		return
	}

	var req request.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	batch, err := h.inventoryService.Adjust(c.Request.Context(), key, req.Delta, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock adjusted successfully", batch)
}

// LowStock lists batches at or under their threshold.
func (h *InventoryHandler) LowStock(c *gin.Context) {
	batches, err := h.inventoryService.LowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Low stock batches retrieved successfully", batches)
}

// Expiring lists batches expiring within ?days= (default from config).
func (h *InventoryHandler) Expiring(c *gin.Context) {
	var filter request.BatchFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil || filter.Days < 0 {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	within := h.inventoryService.ExpiringWindow()
	if filter.Days > 0 {
		within = time.Duration(filter.Days) * 24 * time.Hour
	}

	batches, err := h.inventoryService.Expiring(c.Request.Context(), within)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Expiring batches retrieved successfully", batches)
}

// Expired lists batches past their expiry date that still hold stock.
func (h *InventoryHandler) Expired(c *gin.Context) {
	batches, err := h.inventoryService.Expired(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Expired batches retrieved successfully", batches)
}

func appendFieldErrors(dst []apperror.FieldError, err error) []apperror.FieldError {
	if err == nil {
		return dst
	}
	return append(dst, apperror.GetAppError(err).Errors...)
}
