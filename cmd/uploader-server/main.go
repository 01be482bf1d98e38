// cmd/uploader-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pfs-target-uploader/internal/common/config"
	"pfs-target-uploader/internal/common/database"
	"pfs-target-uploader/internal/common/logger"
	"pfs-target-uploader/internal/common/observability"
	"pfs-target-uploader/internal/notify"
	"pfs-target-uploader/internal/planner"
	"pfs-target-uploader/internal/server"
	"pfs-target-uploader/internal/simulation"
	"pfs-target-uploader/internal/uploads"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting uploader server...")

	obs := observability.New("uploader-server")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Wire the pipeline ---
	plannerClient := planner.NewClient(
		cfg.Planner.BaseURL,
		config.GetDuration(cfg.Planner.Timeout),
		log.WithFields(map[string]interface{}{"component": "planner-client"}),
	)
	store := uploads.NewStore(cfg.Storage.OutputDir, log)
	registry := uploads.NewRegistry(pg, log)
	searchIndex := uploads.NewSearchIndex(esClient.Client, cfg.Database.Elasticsearch.Index, log)

	notifier, err := notify.New(ctx, cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("notifier initialization failed", zap.Error(err))
	}

	service := simulation.NewService(plannerClient, store, registry, searchIndex, notifier, cfg, log)
	queue := simulation.NewQueue(rdb, cfg.Queue.Key, config.GetDuration(cfg.Queue.BlockTimeout))

	checks := map[string]server.HealthCheck{
		"postgres": pg.Ping,
		"redis":    rdb.Ping,
		"elasticsearch": func(ctx context.Context) error {
			return esClient.Info(ctx)
		},
	}

	api := server.New(service, queue, registry, searchIndex, cfg, log, checks)
	httpServer := api.HTTPServer()

	// --- Start queue worker ---
	workerCtx, stopWorker := context.WithCancel(ctx)
	worker := simulation.NewWorker(queue, service, obs, log)
	go func() {
		if err := worker.Run(workerCtx); err != nil {
			zapLog.Error("simulation worker exited", zap.Error(err))
		}
	}()

	go func() {
		zapLog.Info("HTTP API listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	stopWorker()
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Uploader server stopped gracefully")
}
