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
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/ManoGuzman/inventory-system/internal/application/auth"
	"github.com/ManoGuzman/inventory-system/internal/application/bootstrap"
	"github.com/ManoGuzman/inventory-system/internal/application/events"
	"github.com/ManoGuzman/inventory-system/internal/application/inventory"
	"github.com/ManoGuzman/inventory-system/internal/application/usecase"
	"github.com/ManoGuzman/inventory-system/internal/domain/repository"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/cache"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/memory"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/messaging"
	"github.com/ManoGuzman/inventory-system/internal/infrastructure/postgres"
	httpRouter "github.com/ManoGuzman/inventory-system/internal/interfaces/http"
	"github.com/ManoGuzman/inventory-system/pkg/config"
	"github.com/ManoGuzman/inventory-system/pkg/logger"
	"github.com/ManoGuzman/inventory-system/pkg/telemetry"
)

const version = "1.0.0"

// storage repositorios de la implementación elegida por STORAGE_DRIVER.
type storage struct {
	txRunner inventory.TxRunner
	products repository.ProductRepository
	reader   repository.MovementReader
	users    repository.UserRepository
	outbox   repository.OutboxReader
	close    func()
}

// publisher publica eventos y libera la conexión al broker.
type publisher interface {
	events.Publisher
	Close() error
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
		Str("broker", cfg.Events.Broker).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar trazas")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Caché Redis para lecturas de movimientos (opcional)
	reader := store.reader
	if cfg.Redis.Enabled() {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		reader = cache.NewMovementCache(reader, rdb, cfg.Redis.TTL, log)
	}

	pub, err := openPublisher(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al broker de eventos")
	}
	defer pub.Close()

	relay := events.NewRelay(store.outbox, pub, events.RelayConfig{
		PollInterval: cfg.Events.PollInterval,
		BatchSize:    cfg.Events.BatchSize,
		MaxAttempts:  cfg.Events.MaxAttempts,
	}, log)
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		relay.Run(ctx)
	}()

	applyUC := inventory.NewApplyMovementUseCase(store.txRunner, inventory.EngineConfig{
		MaxRetries:   cfg.Engine.MaxRetries,
		RetryBackoff: cfg.Engine.RetryBackoff,
	}, log)
	queryUC := inventory.NewMovementQueryUseCase(reader)
	reconcileUC := inventory.NewReconciliationUseCase(store.products, reader)
	productUC := usecase.NewProductUseCase(store.products)
	authUC := auth.NewAuthUseCase(store.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventory System API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "storage": cfg.Storage.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:         authUC,
		ProductUC:      productUC,
		ApplyMovement:  applyUC,
		MovementQuery:  queryUC,
		Reconciliation: reconcileUC,
		JWTSecret:      cfg.JWT.Secret,
		Logger:         log,
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
	stop()
	<-relayDone
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("cierre de trazas")
	}

	log.Info().Msg("aplicación detenida")
}

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore(memory.WithLockTimeout(cfg.Engine.LockTimeout))
		st := &storage{
			txRunner: memory.NewTxRunner(s),
			products: memory.NewProductRepository(s),
			reader:   memory.NewMovementRepository(s),
			users:    memory.NewUserRepository(s),
			outbox:   memory.NewOutboxRepository(s),
			close:    func() {},
		}
		if cfg.Storage.Seed {
			// el almacén en memoria arranca sin usuarios
			if _, err := bootstrap.Seed(ctx, st.users, st.products, bootstrap.Options{
				AdminUsername: cfg.Storage.AdminUsername,
				AdminPassword: cfg.Storage.AdminPassword,
			}, log); err != nil {
				return nil, err
			}
		}
		return st, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		txRunner: postgres.NewTxRunner(pool, cfg.Engine.LockTimeout, log),
		products: postgres.NewProductRepository(pool),
		reader:   postgres.NewMovementRepository(pool),
		users:    postgres.NewUserRepository(pool),
		outbox:   postgres.NewOutboxRepository(pool),
		close:    pool.Close,
	}, nil
}

func openPublisher(cfg *config.Config, log *logger.Logger) (publisher, error) {
	switch cfg.Events.Broker {
	case config.BrokerNATS:
		conn, err := messaging.ConnectNATS(cfg.Events.NATSURL, cfg.App.Name)
		if err != nil {
			return nil, err
		}
		return messaging.NewNATSPublisher(conn, cfg.Events.Subject), nil
	case config.BrokerKafka:
		return messaging.NewKafkaPublisher(messaging.NewKafkaWriter(cfg.Events.KafkaBrokers), cfg.Events.Subject), nil
	default:
		return messaging.NewLogPublisher(log), nil
	}
}
