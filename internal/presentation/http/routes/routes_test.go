package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/retailpos/internal/application/service"
	"github.com/sangkips/retailpos/internal/config"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/sangkips/retailpos/internal/infrastructure/memory"
	"github.com/sangkips/retailpos/internal/presentation/http/handler"
	"github.com/sangkips/retailpos/internal/presentation/http/middleware"
	"github.com/sangkips/retailpos/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

type server struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
}

func newServer(t *testing.T, limiter *middleware.IPRateLimiter) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	rules := service.AllocationRules{Policy: enum.AllocationFEFO}

	products := service.NewProductService(store.Products(), store.Transactor(), nil)
	inventory := service.NewInventoryService(store.Inventory(), store.Products(), rules)
	billing := service.NewBillingService(store.Transactor(), store.Products(), store.Inventory(), store.Bills(), rules)
	settings := service.NewSettingsService(store.Settings())

	h := &Handlers{
		Product:   handler.NewProductHandler(products),
		Inventory: handler.NewInventoryHandler(inventory),
		Billing:   handler.NewBillingHandler(billing),
		Payment:   handler.NewPaymentHandler(service.NewPaymentService(billing, settings)),
		Printer:   handler.NewPrinterHandler(service.NewPrinterService(printer.NewNullPrinter(), billing, settings)),
		Settings:  handler.NewSettingsHandler(settings),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(store.Bills(), store.Products(), inventory)),
		Health:    handler.NewHealthHandler(map[string]handler.Pinger{"store": store}),
	}

	router := Setup(h, &Deps{
		Cfg:             &config.Config{App: config.AppConfig{Name: "retailpos"}},
		IdempotencyRepo: store.Idempotency(),
		RateLimiter:     limiter,
	})
	return &server{t: t, router: router, store: store}
}

func (s *server) do(method, path string, body any, headers ...string) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// stock creates a product at price with 9%+9% tax and one batch of qty.
func (s *server) stock(name, price string, qty int) entity.Product {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/v1/products", map[string]any{
		"name": name, "price": price, "barcode": "890" + name, "hsn": "3304", "cgst": 9, "sgst": 9,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var p entity.Product
	require.NoError(s.t, json.Unmarshal(env.Data, &p))

	w, _ = s.do(http.MethodPost, "/api/v1/inventory/batches", map[string]any{
		"product_id": p.ID, "location": "Main", "batch_id": "B1", "quantity": qty, "expiry_date": "2099-12-31",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return p
}

func TestHealth(t *testing.T) {
	s := newServer(t, nil)

	w, env := s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	s.store.FailWrites(assert.AnError)
	w, _ = s.do(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCheckoutFlow(t *testing.T) {
	s := newServer(t, nil)
	p := s.stock("Lipstick", "100.00", 5)

	w, env := s.do(http.MethodPost, "/api/v1/bills", map[string]any{
		"lines":          []map[string]any{{"product_id": p.ID, "quantity": 2}},
		"payment_method": "upi",
		"customer":       map[string]any{"name": "Asha"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var bill entity.Bill
	require.NoError(t, json.Unmarshal(env.Data, &bill))
	assert.True(t, decimal.RequireFromString("236").Equal(bill.Total))
	assert.Equal(t, enum.PaymentMethodUPI, bill.PaymentMethod)
	require.Len(t, bill.Lines, 1)
	assert.Equal(t, "B1", bill.Lines[0].BatchID)

	w, env = s.do(http.MethodGet, "/api/v1/bills/number/"+bill.BillNumber, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/products/"+p.ID.String()+"/batches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var batches []entity.InventoryBatch
	require.NoError(t, json.Unmarshal(env.Data, &batches))
	require.Len(t, batches, 1)
	assert.Equal(t, 3, batches[0].Quantity)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/bills/"+bill.ID.String()+"/receipt/pdf", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	w, env = s.do(http.MethodGet, "/api/v1/bills/"+bill.ID.String()+"/upi", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var link service.PaymentLink
	require.NoError(t, json.Unmarshal(env.Data, &link))
	assert.Contains(t, link.URI, "am=236.00")
}

func TestCheckoutInsufficientStock(t *testing.T) {
	s := newServer(t, nil)
	p := s.stock("Kajal", "50.00", 4)

	w, env := s.do(http.MethodPost, "/api/v1/bills", map[string]any{
		"lines":          []map[string]any{{"product_id": p.ID, "quantity": 9}},
		"payment_method": "cash",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "insufficient_stock", env.Code)

	var shortages []struct {
		Requested int `json:"requested"`
		Available int `json:"available"`
		Shortfall int `json:"shortfall"`
	}
	require.NoError(t, json.Unmarshal(env.Errors, &shortages))
	require.Len(t, shortages, 1)
	assert.Equal(t, 9, shortages[0].Requested)
	assert.Equal(t, 4, shortages[0].Available)
	assert.Equal(t, 5, shortages[0].Shortfall)
}

func TestCheckoutValidation(t *testing.T) {
	s := newServer(t, nil)
	p := s.stock("Comb", "20.00", 4)

	w, env := s.do(http.MethodPost, "/api/v1/bills", map[string]any{
		"lines":          []map[string]any{{"product_id": p.ID, "quantity": 1}},
		"payment_method": "cheque",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation", env.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/bills/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/bills", map[string]any{
		"lines":          []map[string]any{{"product_id": p.ID, "quantity": 1}},
		"payment_method": "cash",
		"customer":       map[string]any{"email": "Asha <asha@example.com>"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPut, "/api/v1/settings", map[string]any{"email": "Corner Shop <owner@example.com>"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutIdempotency(t *testing.T) {
	s := newServer(t, nil)
	p := s.stock("Soap", "30.00", 10)
	body := map[string]any{
		"lines":          []map[string]any{{"product_id": p.ID, "quantity": 3}},
		"payment_method": "cash",
	}

	first, _ := s.do(http.MethodPost, "/api/v1/bills", body, middleware.IdempotencyKeyHeader, "till-1-0001")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())

	second, _ := s.do(http.MethodPost, "/api/v1/bills", body, middleware.IdempotencyKeyHeader, "till-1-0001")
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get(middleware.IdempotencyReplayedHeader))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	// stock moved once
	w, env := s.do(http.MethodGet, "/api/v1/products/"+p.ID.String()+"/batches", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var batches []entity.InventoryBatch
	require.NoError(t, json.Unmarshal(env.Data, &batches))
	assert.Equal(t, 7, batches[0].Quantity)

	body["lines"] = []map[string]any{{"product_id": p.ID, "quantity": 1}}
	reused, env := s.do(http.MethodPost, "/api/v1/bills", body, middleware.IdempotencyKeyHeader, "till-1-0001")
	assert.Equal(t, http.StatusConflict, reused.Code)
	assert.Equal(t, "conflict", env.Code)
}

func TestCartEndpoints(t *testing.T) {
	s := newServer(t, nil)
	p := s.stock("Oil", "120.00", 5)

	w, env := s.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": p.ID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cart struct {
		Lines []service.CartLine `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Len(t, cart.Lines, 1)

	w, env = s.do(http.MethodPost, "/api/v1/cart/items", map[string]any{"lines": cart.Lines, "product_id": p.ID, "quantity": 4})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "validation", env.Code)

	w, env = s.do(http.MethodPost, "/api/v1/cart/quote", map[string]any{"lines": cart.Lines})
	require.Equal(t, http.StatusOK, w.Code)
	var quote service.Quote
	require.NoError(t, json.Unmarshal(env.Data, &quote))
	assert.True(t, decimal.RequireFromString("283.2").Equal(quote.Total))
	assert.Empty(t, quote.Shortages)
}

func TestRateLimit(t *testing.T) {
	limiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfigFor(2, time.Hour))
	defer limiter.Stop()
	s := newServer(t, limiter)

	for i := 0; i < 2; i++ {
		w, _ := s.do(http.MethodGet, "/api/v1/settings", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	w, _ := s.do(http.MethodGet, "/api/v1/settings", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	// limits are per route group, so the bare health check still answers
	w, _ = s.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
