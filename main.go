package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Zhima-Mochi/kitchen-inventory/internal/application"
	appinventory "github.com/Zhima-Mochi/kitchen-inventory/internal/application/inventory"
	apporder "github.com/Zhima-Mochi/kitchen-inventory/internal/application/order"
	apprecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/application/recipe"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/config"
	dominv "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/inventory"
	domorder "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/order"
	domrecipe "github.com/Zhima-Mochi/kitchen-inventory/internal/domain/recipe"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/gormstore"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/id"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/observability"
	"github.com/Zhima-Mochi/kitchen-inventory/internal/pkg/logging"
	httppresentation "github.com/Zhima-Mochi/kitchen-inventory/internal/presentation/http"
	workerpresentation "github.com/Zhima-Mochi/kitchen-inventory/internal/presentation/worker"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type stores struct {
	ingredients  dominv.Repository
	transactions dominv.TransactionRepository
	recipes      domrecipe.Repository
	menu         domrecipe.MenuRepository
	orders       domorder.Repository
	close        func() error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger yet: config decides the level
		zap.NewExample().Fatal("config_invalid", zap.Error(err))
	}

	baseLogger := logging.MustNewLogger(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer func() { _ = baseLogger.Sync() }()
	zap.ReplaceGlobals(baseLogger)

	systemLogger := zaplogger.Wrap(logging.WithTrace(baseLogger, logging.SystemTraceID, logging.SystemSpanID))

	tel := infraobs.New(
		infraobs.WithTracer(oteltrace.New(cfg.ServiceName)),
		infraobs.WithLogger(zaplogger.Wrap(baseLogger)),
		infraobs.WithInstruments(prometrics.Standard(prometrics.New("", "", prometheus.DefaultRegisterer))),
	)

	st, err := openStores(cfg)
	if err != nil {
		systemLogger.Error("store_open_failed", observability.F("store", cfg.Store), observability.F("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := st.close(); err != nil {
			systemLogger.Warn("store_close_failed", observability.F("error", err))
		}
	}()
	systemLogger.Info("store_ready", observability.F("store", cfg.Store))

	// In-process event bus between order intake and inventory consumption
	bus := outbox.NewBus(tel)
	bus.Start(context.Background())

	var ids application.IDGenerator = id.NewUUIDGenerator()

	ledger := appinventory.NewLedger(st.ingredients, st.transactions, ids, bus, tel)
	resolver := apprecipe.NewResolver(st.recipes, st.menu, st.ingredients, ids, tel)
	consume := appinventory.NewConsumeForOrderUseCase(resolver, st.ingredients, ids, bus, tel)
	placeOrder := apporder.NewPlaceOrderUseCase(st.orders, ids, bus, tel)

	inventoryWorker := appinventory.NewWorker(
		consume,
		st.transactions,
		workerpresentation.Instrumented(bus, "inventory-worker", tel),
		bus,
		appinventory.RetryPolicy{MaxAttempts: cfg.ConsumeMaxAttempts, Backoff: cfg.ConsumeBackoff},
		tel,
	)
	orderWorker := apporder.NewWorker(st.orders, workerpresentation.Instrumented(bus, "order-worker", tel), tel)
	inventoryWorker.Start()
	orderWorker.Start()

	app := httppresentation.NewHandler(ledger, resolver, placeOrder, cfg.DefaultMarginPercent, tel).App()
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		systemLogger.Info("http_server_start", observability.F("addr", cfg.HTTPAddr))
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			systemLogger.Error("http_server_error", observability.F("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		systemLogger.Error("http_server_shutdown_error", observability.F("error", err))
	} else {
		systemLogger.Info("http_server_stopped")
	}

	// drain in-flight consumption before the store goes away
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := bus.Stop(shutdownCtx); err != nil {
		systemLogger.Error("event_bus_stop_error", observability.F("error", err))
	}
}

func openStores(cfg *config.Config) (*stores, error) {
	switch cfg.Store {
	case config.StorePostgres:
		db, err := gormstore.Open(cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			ingredients:  gormstore.NewIngredientRepository(db),
			transactions: gormstore.NewTransactionRepository(db),
			recipes:      gormstore.NewRecipeRepository(db),
			menu:         gormstore.NewMenuRepository(db),
			orders:       gormstore.NewOrderRepository(db),
			close:        func() error { return gormstore.Close(db) },
		}, nil
	default:
		log := memory.NewTransactionRepository()
		return &stores{
			ingredients:  memory.NewIngredientRepository(log),
			transactions: log,
			recipes:      memory.NewRecipeRepository(),
			menu:         memory.NewMenuRepository(),
			orders:       memory.NewOrderRepository(),
			close:        func() error { return nil },
		}, nil
	}
}
