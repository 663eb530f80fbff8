package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/retailpos/internal/config"
	domainRepo "github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/internal/presentation/http/handler"
	"github.com/sangkips/retailpos/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Product   *handler.ProductHandler
	Inventory *handler.InventoryHandler
	Billing   *handler.BillingHandler
	Payment   *handler.PaymentHandler
	Printer   *handler.PrinterHandler
	Settings  *handler.SettingsHandler
	Dashboard *handler.DashboardHandler
	Health    *handler.HealthHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.IPRateLimiter
	Now             func() time.Time
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", h.Health.Check)

	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}
	{
		v1.GET("/health", h.Health.Check)

		// Settings
		v1.GET("/settings", h.Settings.GetSettings)
		v1.PUT("/settings", h.Settings.UpdateSettings)

		// Dashboard
		v1.GET("/dashboard", h.Dashboard.GetStats)

		registerProductRoutes(v1, h)
		registerInventoryRoutes(v1, h)
		registerCartRoutes(v1, h)
		registerBillRoutes(v1, h, deps)
		registerPaymentRoutes(v1, h)
		registerPrinterRoutes(v1, h)
	}

	return router
}

func registerProductRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.POST("/import", h.Product.Import)
		products.GET("/categories", h.Product.Categories)
		products.GET("/barcode/:barcode", h.Product.GetByBarcode)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)

		products.GET("/:id/batches", h.Inventory.ListProductBatches)
		products.PUT("/:id/batches/:location/:batch", h.Inventory.UpdateBatch)
		products.POST("/:id/batches/:location/:batch/adjust", h.Inventory.Adjust)
	}
}

func registerInventoryRoutes(v1 *gin.RouterGroup, h *Handlers) {
	inventory := v1.Group("/inventory")
	{
		inventory.GET("/batches", h.Inventory.ListBatches)
		inventory.POST("/batches", h.Inventory.AddBatch)
		inventory.GET("/low-stock", h.Inventory.LowStock)
		inventory.GET("/expiring", h.Inventory.Expiring)
		inventory.GET("/expired", h.Inventory.Expired)
	}
}

func registerCartRoutes(v1 *gin.RouterGroup, h *Handlers) {
	cart := v1.Group("/cart")
	{
		cart.POST("/quote", h.Billing.Quote)
		cart.POST("/items", h.Billing.AddToCart)
		cart.PUT("/items", h.Billing.SetCartQuantity)
	}
}

func registerBillRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	bills := v1.Group("/bills")
	{
		bills.GET("", h.Billing.List)
		bills.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Now:  deps.Now,
		}), h.Billing.Checkout)
		bills.GET("/export", h.Billing.Export)
		bills.GET("/number/:number", h.Billing.GetByNumber)
		bills.GET("/:id", h.Billing.Get)
		bills.GET("/:id/receipt", h.Printer.Receipt)
		bills.GET("/:id/receipt/pdf", h.Printer.ReceiptPDF)
		bills.POST("/:id/print", h.Printer.PrintBill)
		bills.GET("/:id/upi", h.Payment.BillLink)
	}
}

func registerPaymentRoutes(v1 *gin.RouterGroup, h *Handlers) {
	v1.POST("/payments/upi", h.Payment.AmountLink)
}

func registerPrinterRoutes(v1 *gin.RouterGroup, h *Handlers) {
	printer := v1.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
		printer.POST("/test", h.Printer.TestPrint)
		printer.POST("/print", h.Printer.PrintReceipt)
	}
}
