// Package main is the entry point for the balance service. It builds every
// dependency explicitly, serves HTTP and shuts down on SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"balance/internal/config"
	"balance/internal/handlers"
	"balance/internal/logger"
	"balance/internal/metrics"
	"balance/internal/repositories"
	"balance/internal/repositories/cache"
	"balance/internal/repositories/memory"
	"balance/internal/routes"
	"balance/internal/services/idempotency"
	"balance/internal/services/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const version = "1.0.0"

func main() {
	// Load environment variables
	config.LoadEnv()
	cfg := config.Load()

	log, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accounts, closeAccounts, err := openAccountStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeAccounts()

	redisClient := cache.NewRedisClient(cfg.Redis)
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Warn("failed to close redis connection", zap.Error(err))
		}
	}()
	if err := cache.HealthCheck(ctx, redisClient); err != nil {
		return err
	}
	log.Info("redis connected", zap.String("host", cfg.Redis.Host), zap.Int("db", cfg.Redis.DB))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.New(reg)

	idempotencyStore := repositories.NewIdempotencyStore(redisClient)
	ledgerService := ledger.NewService(accounts, ledger.Config{Timeout: cfg.LedgerTimeout}, collector, log)
	coordinator := idempotency.NewCoordinator(idempotencyStore, idempotency.Config{DefaultTTL: cfg.IdempotencyTTL}, collector, log)

	app := routes.NewApp(cfg.ServiceName, log, collector)
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.HTTP.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, " + handlers.IdempotencyKeyHeader,
		AllowMethods:  "GET,POST,HEAD",
		ExposeHeaders: handlers.IdempotencyKeyHeader,
	}))
	if cfg.HTTP.RateLimitMax > 0 {
		app.Use("/api/transactions", limiter.New(limiter.Config{
			Next: func(c *fiber.Ctx) bool {
				return c.Method() != fiber.MethodPost
			},
			Max:        cfg.HTTP.RateLimitMax,
			Expiration: cfg.HTTP.RateLimitWindow,
			KeyGenerator: func(c *fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
					"error": "Too many requests. Please try again later.",
				})
			},
		}))
	}

	routes.SetupRoutes(app, routes.Handlers{
		Accounts:     handlers.NewAccountHandler(ledgerService, log),
		Transactions: handlers.NewTransactionHandler(ledgerService, coordinator, cfg.IdempotencyTTL, log),
		Health: handlers.NewHealthHandler(version).
			Check("database", accounts).
			Check("redis", idempotencyStore),
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down http server")
		return app.ShutdownWithTimeout(cfg.HTTP.ShutdownTimeout)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped cleanly")
	return nil
}

// openAccountStore returns the configured account store and its closer.
func openAccountStore(cfg config.Config, log *zap.Logger) (repositories.AccountRepository, func(), error) {
	switch cfg.DB.Driver {
	case "memory":
		log.Warn("using in-memory account store, data is lost on exit")
		return memory.NewAccountRepository(cfg.DB.LockTimeout), func() {}, nil

	case "postgres":
		db, err := repositories.NewPostgres(cfg.DB.DSN(), cfg.DB, log)
		if err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if err := repositories.Close(db); err != nil {
				log.Warn("failed to close database connection", zap.Error(err))
			}
		}
		return repositories.NewAccountRepository(db, cfg.DB.LockTimeout), closeDB, nil

	default:
		return nil, nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DB.Driver)
	}
}
