package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lexflow/lexflow-api-go/internal/config"
	"github.com/lexflow/lexflow-api-go/internal/infra/observability"
	"github.com/lexflow/lexflow-api-go/internal/infra/resilience"
	"github.com/lexflow/lexflow-api-go/internal/infra/supabase"
	"github.com/lexflow/lexflow-api-go/internal/jobs"
	"github.com/lexflow/lexflow-api-go/internal/service"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	runNow := flag.Bool("run-now", false, "enqueue one audit retention run at startup")
	flag.Parse()

	_ = config.LoadDotEnv(".env")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, "lexflow-worker")
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("missing configuration", zap.Error(err))
	}
	if cfg.RedisAddr == "" {
		logger.Fatal("REDIS_ADDR is required by the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "lexflow-worker")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	metrics := observability.NewMetrics()
	store := supabase.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		resilience.NewCircuitBreaker("supabase"),
		resilience.Config{MaxRetries: cfg.MaxRetries, InitialBackoff: cfg.InitialBackoff, MaxConcurrency: cfg.MaxConcurrency},
		logger,
	)
	auditSvc := service.NewAuditService(store, store, metrics, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	retentionTask, err := jobs.NewAuditRetentionTask("schedule")
	if err != nil {
		logger.Fatal("build retention task", zap.Error(err))
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskAuditRetention, Handler: jobs.NewAuditRetentionJob(auditSvc, logger).Handle},
		},
		Cron: []jobs.CronRegistration{
			{Schedule: cfg.AuditRetentionCron, Task: retentionTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Fatal("init worker", zap.Error(err))
	}

	if *runNow {
		client := jobs.NewClient(redisOpts)
		info, err := client.EnqueueAuditRetention(ctx, "manual")
		client.Close()
		if err != nil {
			logger.Fatal("enqueue retention", zap.Error(err))
		}
		logger.Info("retention enqueued", zap.String("task_id", info.ID))
	}

	logger.Info("worker starting", zap.String("retention_cron", cfg.AuditRetentionCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("worker run", zap.Error(err))
	}
	logger.Info("worker stopped")
}
