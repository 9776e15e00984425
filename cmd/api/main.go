package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	_ "github.com/bizsuite/ledger-api/docs"
	appanalytics "github.com/bizsuite/ledger-api/internal/application/analytics"
	"github.com/bizsuite/ledger-api/internal/application/billing"
	"github.com/bizsuite/ledger-api/internal/application/inventory"
	"github.com/bizsuite/ledger-api/internal/application/usecase"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
	"github.com/bizsuite/ledger-api/internal/domain/transfer"
	"github.com/bizsuite/ledger-api/internal/infrastructure/memory"
	"github.com/bizsuite/ledger-api/internal/infrastructure/metrics"
	"github.com/bizsuite/ledger-api/internal/infrastructure/postgres"
	"github.com/bizsuite/ledger-api/internal/infrastructure/resilience"
	httpRouter "github.com/bizsuite/ledger-api/internal/interfaces/http"
	"github.com/bizsuite/ledger-api/pkg/config"
	"github.com/bizsuite/ledger-api/pkg/logger"
)

// inventoryBackend lo que el almacén de inventario debe ofrecer a los casos de uso.
type inventoryBackend interface {
	transfer.InventoryStore
	repository.LocationInventoryRepository
	repository.TransferLedgerRepository
}

type reportBackend interface {
	repository.AnalyticsRepository
	repository.TransitReportRepository
}

// stores repositorios del backend elegido con APP_STORE.
type stores struct {
	locations repository.LocationRepository
	transfers repository.TransferRepository
	invoices  repository.InvoiceRepository
	billingTx billing.BillingTxRunner
	inventory inventoryBackend
	reports   reportBackend
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.App.Store).
		Msg("iniciando aplicación")

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(metrics.Config{Namespace: cfg.Metrics.Namespace})
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	// El conciliador y los ajustes manuales pasan por el breaker; las lecturas van directo.
	var store transfer.InventoryStore = st.inventory
	if cfg.Breaker.Enabled {
		store = resilience.NewBreakerStore(st.inventory, resilience.BreakerConfig{
			Name:             "inventory",
			FailureThreshold: uint32(cfg.Breaker.FailureThreshold),
			Timeout:          cfg.Breaker.Timeout,
			MaxRequests:      uint32(cfg.Breaker.MaxRequests),
		}, log.Component("breaker"), m)
	}

	invoiceUC := billing.NewInvoiceUseCase(st.billingTx, st.invoices, billing.InvoiceConfig{
		RequireNonNegativeGrandTotal: cfg.Validation.NonNegativeGrandTotal,
		DisplayLocale:                cfg.Display.Locale,
	}, m, log.Component("billing"))
	transferUC := inventory.NewTransferUseCase(st.transfers, st.locations, store, m, log.Component("transfers")).
		WithLedger(st.inventory)
	stockUC := inventory.NewStockUseCase(st.inventory, st.locations, store, log.Component("stock"))
	replenishmentUC := inventory.NewReplenishmentUseCase(st.inventory, st.locations)
	locationUC := usecase.NewLocationUseCase(st.locations, usecase.LocationConfig{
		SingleHeadquarters: cfg.Validation.SingleHeadquarters,
	}, log.Component("locations"))
	analyticsUC := usecase.NewAnalyticsUseCase(st.reports)
	dashboardUC := appanalytics.NewDashboardUseCase(st.reports)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestID())
	app.Use(httpRouter.RequestLogger(log.Component("http"), m))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerPath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     cfg.HTTP.SwaggerPath,
			Title:    "Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.App.Store})
	})
	if m != nil {
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(m.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		InvoiceUC:       invoiceUC,
		TransferUC:      transferUC,
		StockUC:         stockUC,
		ReplenishmentUC: replenishmentUC,
		LocationUC:      locationUC,
		AnalyticsUC:     analyticsUC,
		DashboardUC:     dashboardUC,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.App.Store == config.StorePostgres {
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		return &stores{
			locations: postgres.NewLocationRepository(pool),
			transfers: postgres.NewTransferRepository(pool),
			invoices:  postgres.NewInvoiceRepository(pool),
			billingTx: postgres.NewTxRunner(pool),
			inventory: postgres.NewInventoryStore(pool),
			reports:   postgres.NewAnalyticsRepository(pool),
			close:     pool.Close,
		}, nil
	}

	b := memory.NewBackend()
	return &stores{
		locations: b.Locations,
		transfers: b.Transfers,
		invoices:  b.Invoices,
		billingTx: b,
		inventory: b.Inventory,
		reports:   b,
		close:     func() {},
	}, nil
}
