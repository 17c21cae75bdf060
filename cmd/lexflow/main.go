package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexflow/lexflow-api-go/internal/config"
	"github.com/lexflow/lexflow-api-go/internal/domain"
	"github.com/lexflow/lexflow-api-go/internal/handler"
	"github.com/lexflow/lexflow-api-go/internal/infra/cache"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"
	"github.com/lexflow/lexflow-api-go/internal/infra/resilience"
	"github.com/lexflow/lexflow-api-go/internal/infra/supabase"
	"github.com/lexflow/lexflow-api-go/internal/port"
	"github.com/lexflow/lexflow-api-go/internal/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel, "lexflow-api")
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("missing configuration", zap.Error(err))
	}

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("app_env", cfg.AppEnv),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Bool("redis_cache", cfg.RedisAddr != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "lexflow-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	var principalCache port.Cache[domain.Principal]
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("redis ping failed, cache reads will miss", zap.Error(err))
		}
		cancel()
		principalCache = cache.NewRedis[domain.Principal](rdb, "lexflow", cfg.CacheTTL, logger)
	} else {
		principalCache = cache.New[domain.Principal](cfg.CacheTTL)
	}

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("supabase")
	pdfBulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Supabase ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	store := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cb,
		resilienceCfg,
		logger,
	)
	logger.Info("supabase backend configured", zap.String("supabase_url", cfg.SupabaseURL))

	// --- Services ---
	access := service.NewAccessService(store, principalCache, metrics, logger, cfg.SupabaseJWTSecret)
	services := handler.Services{
		Access:    access,
		Dashboard: service.NewDashboardService(store, metrics, logger),
		Reports:   service.NewReportsService(store, store, pdfBulkhead, metrics, logger),
		Audit:     service.NewAuditService(store, store, metrics, logger),
		Users:     service.NewUsersService(store, store, access, logger),
		Backup:    service.NewBackupService(store, logger),
		Seed:      service.NewSeedService(store, store, logger),
		Records:   service.NewRecordsService(store, logger),
		Settings:  service.NewSettingsService(store, logger),
		Store:     store,
	}

	// --- Router ---
	router := handler.NewRouter(services, handler.Options{
		HeavyRateLimit: cfg.HeavyRateLimit,
		Production:     cfg.IsProduction(),
	}, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
