package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/factory-api/internal/application/analytics"
	"github.com/jhoicas/factory-api/internal/application/auth"
	"github.com/jhoicas/factory-api/internal/application/dto"
	"github.com/jhoicas/factory-api/internal/application/ports"
	"github.com/jhoicas/factory-api/internal/application/stock"
	"github.com/jhoicas/factory-api/internal/application/workorder"
	"github.com/jhoicas/factory-api/internal/domain"
	"github.com/jhoicas/factory-api/internal/domain/entity"
	"github.com/jhoicas/factory-api/internal/domain/repository"
	"github.com/jhoicas/factory-api/internal/infrastructure/excel"
	"github.com/jhoicas/factory-api/internal/infrastructure/memory"
	"github.com/jhoicas/factory-api/internal/infrastructure/pdf"
	"github.com/jhoicas/factory-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/factory-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/factory-api/internal/interfaces/http"
	"github.com/jhoicas/factory-api/pkg/config"
	"github.com/jhoicas/factory-api/pkg/logger"
)

// backend repositorios y runners de transacción según STORAGE_DRIVER.
type backend struct {
	woTx      workorder.TxRunner
	ledgerTx  stock.TxRunner
	workOrder repository.WorkOrderRepository
	items     repository.StockItemRepository
	movements repository.StockMovementRepository
	users     repository.UserRepository
	analytics repository.AnalyticsRepository
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			woTx:      store,
			ledgerTx:  store,
			workOrder: store.WorkOrders(),
			items:     store.StockItems(),
			movements: store.StockMovements(),
			users:     store.Users(),
			analytics: store.Analytics(),
			close:     func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	tx := postgres.NewTxRunner(pool)
	return &backend{
		woTx:      tx,
		ledgerTx:  tx,
		workOrder: postgres.NewWorkOrderRepository(pool),
		items:     postgres.NewStockItemRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		users:     postgres.NewUserRepository(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		close:     pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer be.close()

	// Redis opcional: sin él la idempotencia y el bloqueo por orden quedan en no-op
	// y la serialización la garantiza FOR UPDATE + versión.
	var guard ports.IdempotencyGuard
	var locker ports.Locker
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		defer rdb.Close()
		guard = infraredis.NewIdempotencyGuard(rdb)
		locker = infraredis.NewLocker(rdb, log)
	}

	authUC := auth.NewAuthUseCase(be.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	workOrderUC := workorder.NewLifecycleUseCase(be.woTx, be.workOrder, locker, guard, log)
	ledgerUC := stock.NewLedgerUseCase(
		be.ledgerTx, be.items, be.movements,
		excel.NewMovementExporter(), guard, log, cfg.Storage.MovementListLimit,
	)

	if cfg.Bootstrap.Enabled() {
		_, err := authUC.RegisterUser(ctx, dto.RegisterUserRequest{
			Username: cfg.Bootstrap.AdminUsername,
			Name:     cfg.Bootstrap.AdminUsername,
			PIN:      cfg.Bootstrap.AdminPIN,
			Role:     entity.RoleAdmin,
		})
		switch {
		case err == nil:
			log.Info().Str("username", cfg.Bootstrap.AdminUsername).Msg("admin inicial creado")
		case errors.Is(err, domain.ErrUsernameExists):
		default:
			log.Fatal().Err(err).Msg("crear admin inicial")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Factory API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		WorkOrderUC: workOrderUC,
		RouteSheet:  workorder.NewRouteSheetUseCase(be.workOrder, pdf.NewRouteSheetGenerator()),
		LedgerUC:    ledgerUC,
		DashboardUC: analytics.NewDashboardUseCase(be.analytics),
		JWTSecret:   cfg.JWT.Secret,
		Log:         log,
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
