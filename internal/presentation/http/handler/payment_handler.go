package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/retailpos/internal/application/service"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/request"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/response"
)

// PaymentHandler produces UPI payment links and QR codes.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// BillLink returns a UPI link for the total of a bill.
func (h *PaymentHandler) BillLink(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	link, err := h.paymentService.LinkForBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment link generated", link)
}

// AmountLink returns a UPI link for an arbitrary amount.
func (h *PaymentHandler) AmountLink(c *gin.Context) {
	var req request.UPILinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	link, err := h.paymentService.LinkForAmount(c.Request.Context(), req.Amount, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment link generated", link)
}
