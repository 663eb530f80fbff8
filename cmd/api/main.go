package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/retailpos/internal/application/service"
	"github.com/sangkips/retailpos/internal/config"
	"github.com/sangkips/retailpos/internal/domain/repository"
	"github.com/sangkips/retailpos/internal/infrastructure/cache"
	"github.com/sangkips/retailpos/internal/infrastructure/database"
	"github.com/sangkips/retailpos/internal/infrastructure/memory"
	infraRepo "github.com/sangkips/retailpos/internal/infrastructure/repository"
	"github.com/sangkips/retailpos/internal/presentation/http/handler"
	"github.com/sangkips/retailpos/internal/presentation/http/middleware"
	"github.com/sangkips/retailpos/internal/presentation/http/routes"
	"github.com/sangkips/retailpos/pkg/logging"
	"github.com/sangkips/retailpos/pkg/printer"
)

// backend bundles the repositories of one persistence driver.
type backend struct {
	products    repository.ProductRepository
	inventory   repository.InventoryRepository
	bills       repository.BillRepository
	settings    repository.SettingsRepository
	idempotency repository.IdempotencyRepository
	transactor  repository.Transactor
	pinger      handler.Pinger
	close       func()
}

func openBackend(cfg *config.Config) (*backend, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		log.Warn().Msg("using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return &backend{
			products:    store.Products(),
			inventory:   store.Inventory(),
			bills:       store.Bills(),
			settings:    store.Settings(),
			idempotency: store.Idempotency(),
			transactor:  store.Transactor(),
			pinger:      store,
			close:       func() {},
		}, nil
	}

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return &backend{
		products:    infraRepo.NewProductRepository(db),
		inventory:   infraRepo.NewInventoryRepository(db),
		bills:       infraRepo.NewBillRepository(db),
		settings:    infraRepo.NewSettingsRepository(db),
		idempotency: infraRepo.NewIdempotencyRepository(db),
		transactor:  infraRepo.NewTransactor(db),
		pinger:      database.Pinger{DB: db},
		close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Fields: map[string]string{"service": cfg.App.Name, "env": cfg.App.Env},
	})

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer store.close()

	seeder := &database.Seeder{
		Products:  store.products,
		Inventory: store.inventory,
		Settings:  store.settings,
	}
	if err := seeder.Seed(ctx, cfg.Store.SeedDemoData); err != nil {
		log.Warn().Err(err).Msg("failed to seed default data")
	}

	checks := map[string]handler.Pinger{"store": store.pinger}

	// Barcode price cache is optional
	var prices cache.PriceCache
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, price cache disabled")
		} else {
			defer rdb.Close()
			prices = cache.NewRedisPriceCache(rdb, time.Duration(cfg.Redis.PriceTTLMinutes)*time.Minute)
			checks["redis"] = prices
		}
	}

	thermalPrinter, err := printer.NewPrinterFromConfig(cfg.Printer.Type, cfg.Printer.USBPath, cfg.Printer.Address)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize printer")
		thermalPrinter = printer.NewNullPrinter()
	}

	rules := service.AllocationRules{
		Policy:      cfg.Billing.AllocationPolicy,
		SkipExpired: cfg.Inventory.SkipExpired,
	}
	expiringWindow := time.Duration(cfg.Inventory.ExpiringSoonDays) * 24 * time.Hour

	// Initialize services
	productService := service.NewProductService(store.products, store.transactor, prices)
	inventoryService := service.NewInventoryService(store.inventory, store.products, rules,
		service.WithExpiringWindow(expiringWindow))
	billingService := service.NewBillingService(store.transactor, store.products, store.inventory, store.bills, rules,
		service.WithBillNumbers(service.PrefixedBillNumbers{Prefix: cfg.Billing.BillPrefix}),
		service.WithBillNumberAttempts(cfg.Billing.NumberAttempts))
	settingsService := service.NewSettingsService(store.settings)
	paymentService := service.NewPaymentService(billingService, settingsService)
	printerService := service.NewPrinterService(thermalPrinter, billingService, settingsService)
	dashboardService := service.NewDashboardService(store.bills, store.products, inventoryService)

	handlers := &routes.Handlers{
		Product:   handler.NewProductHandler(productService),
		Inventory: handler.NewInventoryHandler(inventoryService),
		Billing:   handler.NewBillingHandler(billingService),
		Payment:   handler.NewPaymentHandler(paymentService),
		Printer:   handler.NewPrinterHandler(printerService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Health:    handler.NewHealthHandler(checks),
	}

	rateLimiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfigFor(
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.Duration)*time.Second,
	))
	defer rateLimiter.Stop()

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: store.idempotency,
		RateLimiter:     rateLimiter,
	})

	go purgeIdempotencyKeys(ctx, store.idempotency, time.Hour)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Str("env", cfg.App.Env).Str("store", cfg.Store.Driver).
			Msgf("starting %s server", cfg.App.Name)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// purgeIdempotencyKeys drops expired keys every interval until ctx ends.
func purgeIdempotencyKeys(ctx context.Context, repo repository.IdempotencyRepository, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx, time.Now())
			if err != nil {
				log.Warn().Err(err).Msg("failed to purge idempotency keys")
				continue
			}
			if n > 0 {
				log.Debug().Int64("deleted", n).Msg("purged expired idempotency keys")
			}
		}
	}
}
