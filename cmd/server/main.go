package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/newslens/alignment-notifier/internal/api"
	"github.com/newslens/alignment-notifier/internal/config"
	"github.com/newslens/alignment-notifier/internal/db"
	"github.com/newslens/alignment-notifier/internal/metrics"
	"github.com/newslens/alignment-notifier/internal/push"
	"github.com/newslens/alignment-notifier/internal/ratelimiter"
	"github.com/newslens/alignment-notifier/internal/repository"
	"github.com/newslens/alignment-notifier/internal/service"
	"github.com/newslens/alignment-notifier/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	repo := repository.NewPgNotificationRepository(pool)
	subs := repository.NewPgSubscriberRepository(pool)
	prov := push.NewFCMProvider(cfg.FCMEndpoint, cfg.FCMServerKey, cfg.PushTimeout)
	limiter := ratelimiter.New(cfg.PushRateLimit)
	svc := service.NewNotificationService(repo, subs, prov, limiter, logger)

	// ---- background workers ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	dispatchW := worker.NewDispatchWorker(svc, m, cfg.DispatchInterval, cfg.DispatchBatchSize, logger)
	go dispatchW.Run(workerCtx)

	retryW := worker.NewRetryWorker(svc, cfg.RetryInterval, cfg.RetryLimit, logger)
	go retryW.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(svc, m, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the dispatch and retry loops. A batch abandoned mid-cycle is
	//    safe: unprocessed records stay pending for the next start.
	cancelWorkers()

	logger.Info("server stopped cleanly")
}
