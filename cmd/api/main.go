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
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Ombor-api/internal/application/auth"
	"github.com/jhoicas/Ombor-api/internal/application/inventory"
	"github.com/jhoicas/Ombor-api/internal/application/usecase"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
	"github.com/jhoicas/Ombor-api/internal/infrastructure/cache"
	"github.com/jhoicas/Ombor-api/internal/infrastructure/memory"
	"github.com/jhoicas/Ombor-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Ombor-api/internal/interfaces/http"
	"github.com/jhoicas/Ombor-api/pkg/config"
	"github.com/jhoicas/Ombor-api/pkg/logger"
)

// storage agrupa lo que necesitan los casos de uso, sea cual sea el driver.
type storage struct {
	txRunner  inventory.TxRunner
	repos     inventory.TxRepos
	users     repository.UserRepository
	companies repository.CompanyRepository
	close     func()
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
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	var balanceCache inventory.BalanceCache
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("conexión a Redis")
		}
		balanceCache = cache.NewRedisBalanceCache(client, cfg.Redis.TTL, log.Zerolog())
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.TTL).Msg("caché de balances activa")
	}

	ledgerUC := inventory.NewLedgerUseCase(store.txRunner, store.repos, balanceCache, log.Zerolog(), cfg.App.DefaultCurrency)
	productUC := usecase.NewProductUseCase(store.repos.Products, store.txRunner, balanceCache, log.Zerolog())
	supplierUC := usecase.NewSupplierUseCase(store.repos.Suppliers)
	customerUC := usecase.NewCustomerUseCase(store.repos.Customers)
	userUC := usecase.NewUserUseCase(store.users)
	companyUC := usecase.NewCompanyUseCase(store.companies)
	authUC := auth.NewAuthUseCase(store.users, store.companies, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Ombor API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CompanyUC:  companyUC,
		ProductUC:  productUC,
		SupplierUC: supplierUC,
		CustomerUC: customerUC,
		UserUC:     userUC,
		LedgerUC:   ledgerUC,
		AuthUC:     authUC,
		JWTSecret:  cfg.JWT.Secret,
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

func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.App.StorageDriver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			txRunner:  s,
			repos:     s.Repos(),
			users:     s.Users(),
			companies: s.Companies(),
			close:     func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log.Component("migrations"))
		if err != nil {
			return nil, err
		}
		if err := m.Up(); err != nil {
			_ = m.Close()
			return nil, err
		}
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &storage{
		txRunner:  postgres.NewTxRunner(pool),
		repos:     postgres.NewTxRepos(pool),
		users:     postgres.NewUserRepository(pool),
		companies: postgres.NewCompanyRepository(pool),
		close:     pool.Close,
	}, nil
}
