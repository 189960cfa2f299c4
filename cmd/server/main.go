package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	"github.com/seu-repo/payment-bridge/internal/adapter/external/payment"
	"github.com/seu-repo/payment-bridge/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/payment-bridge/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/payment-bridge/internal/adapter/lock"
	"github.com/seu-repo/payment-bridge/internal/adapter/storage/postgres"
	"github.com/seu-repo/payment-bridge/internal/adapter/vault"
	"github.com/seu-repo/payment-bridge/internal/observability/telemetry"
	"github.com/seu-repo/payment-bridge/internal/ports"
	"github.com/seu-repo/payment-bridge/internal/service/auth"
	"github.com/seu-repo/payment-bridge/internal/service/health"
	paymentservice "github.com/seu-repo/payment-bridge/internal/service/payment"
	"github.com/seu-repo/payment-bridge/pkg/config"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// 2. Initialize Logger
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting payment bridge",
		zap.String("service", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	// 3. Stripe secrets from Vault override the environment
	if cfg.Vault.Enabled {
		if err := loadStripeSecrets(cfg); err != nil {
			logger.Fatal("Failed to read Stripe secrets from Vault", zap.Error(err))
		}
		logger.Info("Loaded Stripe secrets from Vault", zap.String("path", cfg.Vault.Path))
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(cfg.OpenTelemetry.ServiceName, cfg.App.Version,
			cfg.OpenTelemetry.Jaeger.Endpoint, cfg.OpenTelemetry.Jaeger.SamplerParam)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 6. Customer resolution lock
	locker, err := newLocker(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer locker.Close()

	// 7. Initialize Repositories
	orderRepo := postgres.NewOrderRepository(db, logger)
	customerRepo := postgres.NewCustomerRepository(db, logger)

	// 8. Initialize Services
	gateway := payment.NewStripeGateway(cfg.Payment.Stripe, logger)
	paymentService := paymentservice.NewService(paymentservice.Config{
		StoreCustomersInStripe: cfg.Payment.Stripe.StoreCustomersInStripe,
		LockTTL:                cfg.Lock.TTL,
	}, gateway, orderRepo, customerRepo, locker, logger)
	tokenValidator := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, logger)
	healthService := health.NewService(&health.Config{
		Version: cfg.App.Version,
		DB:      sqlDB,
		Locker:  locker,
	}, logger)

	// 9. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		ServerHeader:          cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	}

	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	handlers.RegisterRoutes(app,
		handlers.NewPaymentHandler(paymentService, orderRepo, logger),
		handlers.NewWebhookHandler(paymentService, logger),
		middleware.RequestContext(tokenValidator, logger),
	)

	// 10. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 11. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	if cfg.Level != "" {
		level, err := zap.ParseAtomicLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}

func loadStripeSecrets(cfg *config.Config) error {
	sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	secrets, err := sm.GetStripeSecrets(ctx, cfg.Vault.Path)
	if err != nil {
		return err
	}
	if secrets.SecretKey != "" {
		cfg.Payment.Stripe.SecretKey = secrets.SecretKey
	}
	if secrets.WebhookSecret != "" {
		cfg.Payment.Stripe.WebhookSecret = secrets.WebhookSecret
	}
	return nil
}

// newLocker uses Redis when configured so that several bridge instances
// share the customer lock. Otherwise the lock is process-local.
func newLocker(cfg *config.Config, logger *zap.Logger) (ports.Locker, error) {
	if cfg.Redis.URL == "" {
		logger.Warn("REDIS_URL not set, customer lock is local to this process")
		return lock.NewLocalLocker(logger), nil
	}
	return lock.NewRedisLocker(cfg.Redis.URL, cfg.Lock.WaitTimeout, cfg.Lock.PollInterval, logger)
}
