package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/shopspring/decimal"

	appanalytics "github.com/jhoicas/tienda-api/internal/application/analytics"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/ports"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/application/usecase"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	infracache "github.com/jhoicas/tienda-api/internal/infrastructure/cache"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/tienda-api/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-api/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// storage repos de lectura y runner transaccional del backend elegido.
type storage struct {
	items    repository.ItemRepository
	moves    repository.MovementRepository
	txs      repository.TransactionRepository
	txRunner repository.TxRunner
	close    func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	// Montos como números JSON (no strings)
	decimal.MarshalJSONWithoutQuotes = true

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("inicializar almacenamiento")
	}
	defer store.close()

	summaryCache := openCache(ctx, cfg, log)

	locker := inventory.NewItemLocker(cfg.Inventory.LockTimeout)
	itemUC := usecase.NewItemUseCase(store.items, store.txRunner, locker, cfg.Inventory.LowStockThreshold)
	moveUC := inventory.NewMoveUseCase(store.txRunner, store.items, store.moves, locker, log.Named("inventory"))
	replenishmentUC := inventory.NewReplenishmentUseCase(store.items, store.txs, cfg.Inventory.LowStockThreshold)
	sellUC := sales.NewSellUseCase(store.txRunner, locker, summaryCache, log.Named("sales"))
	ledgerUC := sales.NewLedgerUseCase(store.txs, summaryCache, cfg.Redis.TTL, log.Named("ledger"))
	dashboardUC := appanalytics.NewDashboardUseCase(itemUC, store.txs)
	reportUC := appanalytics.NewReportUseCase(store.txs, infrapdf.NewMarotoPDFGenerator(cfg.App.Name))

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		// Params/Query se guardan en el store y como claves del ItemLocker: deben sobrevivir al request
		Immutable:    true,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI: http://localhost:<port>/docs
	if cfg.App.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Tienda API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ItemUC:          itemUC,
		MoveUC:          moveUC,
		ReplenishmentUC: replenishmentUC,
		SellUC:          sellUC,
		LedgerUC:        ledgerUC,
		DashboardUC:     dashboardUC,
		ReportUC:        reportUC,
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

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &storage{
			items:    postgres.NewItemRepository(pool),
			moves:    postgres.NewMovementRepository(pool),
			txs:      postgres.NewTransactionRepository(pool),
			txRunner: postgres.NewTxRunner(pool, cfg.Inventory.LockTimeout),
			close:    pool.Close,
		}, nil
	case config.StorageSQLite:
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			items:    sqlite.NewItemRepository(db),
			moves:    sqlite.NewMovementRepository(db),
			txs:      sqlite.NewTransactionRepository(db),
			txRunner: sqlite.NewTxRunner(db),
			close:    func() { _ = db.Close() },
		}, nil
	default:
		st := memory.NewStore()
		return &storage{
			items:    st.Items(),
			moves:    st.Movements(),
			txs:      st.Transactions(),
			txRunner: st,
			close:    func() {},
		}, nil
	}
}

// openCache usa Redis si REDIS_ADDR está definido y responde; si no, sin cache.
func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) ports.SalesSummaryCache {
	if cfg.Redis.Addr == "" {
		return infracache.NoopSalesSummaryCache{}
	}
	rc := infracache.NewRedisSalesSummaryCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, resumen de ventas sin cache")
		_ = rc.Close()
		return infracache.NoopSalesSummaryCache{}
	}
	log.Info().Str("addr", cfg.Redis.Addr).Msg("cache redis conectada")
	return rc
}
