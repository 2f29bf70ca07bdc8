package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/lot-ledger/internal/application/inventory"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/lot-ledger/internal/infrastructure/sqlite"
	httpRouter "github.com/jhoicas/lot-ledger/internal/interfaces/http"
	"github.com/jhoicas/lot-ledger/pkg/config"
	"github.com/jhoicas/lot-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

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
		Str("driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET es obligatorio")
	}

	ctx := context.Background()
	txRunner, closeStore := openStore(ctx, cfg, log)
	defer closeStore()

	storeLog := log.Named("ledger")
	deps := httpRouter.RouterDeps{
		Materials:    inventory.NewMaterialUseCase(txRunner),
		Receipts:     inventory.NewReceiptUseCase(txRunner, storeLog),
		Issues:       inventory.NewIssueUseCase(txRunner, storeLog),
		StatusChange: inventory.NewStatusChangeUseCase(txRunner, storeLog),
		Edits:        inventory.NewEditTransactionUseCase(txRunner, storeLog),
		Query:        inventory.NewQueryUseCase(txRunner),
		Logger:       log.Named("http"),
		JWTSecret:    cfg.JWT.Secret,
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Lot Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "driver": cfg.DB.Driver})
	})

	httpRouter.Router(app, deps)

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

// openStore abre el almacenamiento indicado por DB_DRIVER y devuelve su función de cierre.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (inventory.TxRunner, func()) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.DB.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DB.SQLitePath).Msg("apertura de SQLite")
		}
		log.Info().Str("path", store.Path()).Msg("almacenamiento SQLite listo")
		return store, func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("cierre de SQLite")
			}
		}

	case config.DriverMemory:
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al detener el proceso")
		return memory.NewStore(), func() {}

	default:
		if cfg.DB.AutoMigrate {
			migrator, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Named("migrate"))
			if err != nil {
				log.Fatal().Err(err).Msg("inicializar migraciones")
			}
			if err := migrator.Up(); err != nil {
				log.Fatal().Err(err).Msg("aplicar migraciones")
			}
			if err := migrator.Close(); err != nil {
				log.Warn().Err(err).Msg("cerrar migrador")
			}
		}

		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		return postgres.NewTxRunner(pool, cfg.Ledger.TxRetries, log.Named("postgres")), pool.Close
	}
}
