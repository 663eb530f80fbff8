package handler

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/application/service"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/request"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus(c.Request.Context())
	response.OK(c, "Printer status retrieved", status)
}

// TestPrint sends a test page to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printerService.TestPrint(c.Request.Context())
	if err != nil {
		if receipt != nil {
			response.OK(c, "Test print completed (printer may be disabled)", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Test page sent to printer", gin.H{
		"receipt": receipt,
	})
}

// PrintReceipt prints the receipt of the bill named in the body.
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}
	h.print(c, uuid.MustParse(req.BillID))
}

// PrintBill prints the receipt of the bill in the path.
func (h *PrinterHandler) PrintBill(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	h.print(c, id)
}

func (h *PrinterHandler) print(c *gin.Context, billID uuid.UUID) {
	receipt, err := h.printerService.PrintBill(c.Request.Context(), billID)
	if err != nil {
		// the bill exists; hand the receipt back so the client can print it itself
		if receipt != nil {
			response.OK(c, "Receipt generated but printing failed", gin.H{
				"receipt": receipt,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", gin.H{
		"receipt": receipt,
	})
}

// Receipt returns the structured receipt of a bill.
func (h *PrinterHandler) Receipt(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	receipt, err := h.printerService.Receipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// ReceiptPDF downloads the receipt of a bill as a PDF.
func (h *PrinterHandler) ReceiptPDF(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var buf bytes.Buffer
	filename, err := h.printerService.WriteReceiptPDF(c.Request.Context(), id, &buf)
	if err != nil {
		response.Error(c, err)
		return
	}

	disposition := "inline"
	if c.Query("download") == "true" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+`; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
