package handler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/retailpos/internal/application/service"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/request"
	"github.com/sangkips/retailpos/internal/presentation/http/dto/response"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/pagination"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// BillingHandler serves the cart, checkout and bill history.
type BillingHandler struct {
	billingService *service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

// Quote prices the posted cart and reports shortages without committing.
func (h *BillingHandler) Quote(c *gin.Context) {
	var req request.CartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quote, err := h.billingService.Quote(c.Request.Context(), cartLines(req.Lines))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart priced", quote)
}

// AddToCart merges a product into the posted cart and returns the new lines.
func (h *BillingHandler) AddToCart(c *gin.Context) {
	h.changeCart(c, h.billingService.AddToCart)
}

// SetCartQuantity replaces a product's quantity; zero removes it.
func (h *BillingHandler) SetCartQuantity(c *gin.Context) {
	h.changeCart(c, h.billingService.SetCartQuantity)
}

func (h *BillingHandler) changeCart(c *gin.Context, change func(context.Context, []service.CartLine, uuid.UUID, int) ([]service.CartLine, error)) {
	var req request.CartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	lines, err := change(c.Request.Context(), cartLines(req.Lines), uuid.MustParse(req.ProductID), req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart updated", gin.H{"lines": lines})
}

// Checkout commits the posted cart as a bill. Retries should carry an
// Idempotency-Key header.
func (h *BillingHandler) Checkout(c *gin.Context) {
	var req request.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	method, err := enum.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		response.Error(c, apperror.NewFieldError("payment_method", "Payment method must be one of cash, upi or card"))
		return
	}

	bill, err := h.billingService.Checkout(c.Request.Context(), &service.CheckoutInput{
		Lines:            cartLines(req.Lines),
		PaymentMethod:    method,
		PaymentReference: req.PaymentReference,
		Customer: service.Customer{
			Name:    req.Customer.Name,
			Phone:   req.Customer.Phone,
			Email:   req.Customer.Email,
			Address: req.Customer.Address,
		},
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill created successfully", bill)
}

// Get returns one bill with its lines.
func (h *BillingHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	bill, err := h.billingService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// GetByNumber looks a bill up by its printed number.
func (h *BillingHandler) GetByNumber(c *gin.Context) {
	bill, err := h.billingService.GetBillByNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// List returns bill history, newest first.
func (h *BillingHandler) List(c *gin.Context) {
	var req request.BillFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	filter, err := billFilter(&req)
	if err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.billingService.ListBills(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, "Bills retrieved successfully", result)
}

// Export downloads bills between ?from= and ?to= as an xlsx workbook.
// Both default to today.
func (h *BillingHandler) Export(c *gin.Context) {
	from, err := parseDate("from", c.Query("from"))
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseDate("to", c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	y, m, d := time.Now().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	if from == nil {
		from = &today
	}
	if to == nil {
		to = &today
	}

	var buf bytes.Buffer
	if err := h.billingService.ExportBills(c.Request.Context(), *from, *to, &buf); err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("bills-%s-to-%s.xlsx", from.Format(DateLayout), to.Format(DateLayout))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func billFilter(req *request.BillFilterRequest) (*service.BillHistoryFilter, error) {
	filter := &service.BillHistoryFilter{
		Pagination: &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage},
		Search:     req.Search,
	}

	var fieldErrs []apperror.FieldError
	from, err := parseDate("from", req.From)
	fieldErrs = appendFieldErrors(fieldErrs, err)
	to, err := parseDate("to", req.To)
	fieldErrs = appendFieldErrors(fieldErrs, err)
	filter.From, filter.To = from, to

	if req.PaymentMethod != "" {
		method, err := enum.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			fieldErrs = append(fieldErrs, apperror.FieldError{Field: "payment_method", Message: "Unknown payment method"})
		} else {
			filter.PaymentMethod = &method
		}
	}

	if len(fieldErrs) > 0 {
		return nil, apperror.NewValidationError(fieldErrs)
	}
	return filter, nil
}
