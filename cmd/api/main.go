package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/scan-token-service/internal/api/http"
	"github.com/spec-kit/scan-token-service/internal/api/http/handlers"
	"github.com/spec-kit/scan-token-service/internal/auth"
	"github.com/spec-kit/scan-token-service/internal/config"
	"github.com/spec-kit/scan-token-service/internal/events"
	"github.com/spec-kit/scan-token-service/internal/observability"
	"github.com/spec-kit/scan-token-service/internal/persistence"
	"github.com/spec-kit/scan-token-service/internal/repository"
	"github.com/spec-kit/scan-token-service/internal/service"
	"github.com/spec-kit/scan-token-service/internal/worker"
	"github.com/spec-kit/scan-token-service/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The secret is fixed for the process lifetime and set before any request is served.
	tokens, err := auth.NewTokenService([]byte(cfg.Auth.TokenSecret))
	if err != nil {
		logger.Fatal("failed to init token service", zap.Error(err))
	}
	if cfg.Auth.IssuerKeyHash == "" {
		logger.Warn("AUTH_ISSUER_KEY_HASH not set; POST /tokens is disabled")
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrations.FS, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var (
		scanStore  repository.ScanEventRepository
		issuanceDB repository.TokenIssuanceRepository
	)
	if pg.Enabled() {
		scanStore = repository.NewScanEventRepository(pg.PoolHandle())
		issuanceDB = repository.NewTokenIssuanceRepository(pg.PoolHandle())
	}
	var scanHistory repository.ScanHistory
	if redis.Enabled() {
		scanHistory = repository.NewRedisScanHistory(redis.Client, cfg.Scan.HistoryLimit)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartScanRecorder(service.NewScanRecorder(dispatcher, scanStore, issuanceDB, scanHistory, logger))

	tokenService := service.NewTokenService(service.TokenDependencies{
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	scanService := service.NewScanService(service.ScanDependencies{
		Verifier:       tokens,
		History:        scanHistory,
		Store:          scanStore,
		Limiter:        service.NewRateLimiter(cfg.Scan.RateLimitPerMinute, time.Minute, nil),
		Dispatcher:     dispatcher,
		Metrics:        metrics,
		Logger:         logger,
		RequiredClaims: cfg.Scan.RequiredClaims,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Tokens:           handlers.NewTokensHandler(tokenService),
		Scans:            handlers.NewScansHandler(scanService),
		IssuerMiddleware: auth.NewIssuerMiddleware(cfg.Auth.IssuerKeyHash),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
