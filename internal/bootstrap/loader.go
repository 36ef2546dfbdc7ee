package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Deven107/weather-etl-pipeline/internal/aggregate"
	"github.com/Deven107/weather-etl-pipeline/internal/api"
	"github.com/Deven107/weather-etl-pipeline/internal/cache"
	"github.com/Deven107/weather-etl-pipeline/internal/config"
	"github.com/Deven107/weather-etl-pipeline/internal/consumer"
	"github.com/Deven107/weather-etl-pipeline/internal/database"
	"github.com/Deven107/weather-etl-pipeline/internal/loader"
	"github.com/Deven107/weather-etl-pipeline/internal/models"
	"github.com/Deven107/weather-etl-pipeline/internal/normalizer"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
	"github.com/Deven107/weather-etl-pipeline/internal/reports"
	"github.com/Deven107/weather-etl-pipeline/internal/storage"
)

// Loader is the transform-and-load side of the pipeline: it consumes raw
// snapshots from Kafka, normalizes and persists them, maintains daily
// rollups, and serves the query API.
type Loader struct {
	config *config.Config
	logger logger.Logger
}

func NewLoader() (*Loader, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Env).WithField("service", "weather-loader")

	return &Loader{
		config: cfg,
		logger: log,
	}, nil
}

func (l *Loader) Run() error {
	l.logger.Info("Starting weather-loader service")
	l.logger.Infof("Environment: %s", l.config.App.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalChan
		l.logger.Infof("Received signal: %v. Shutting down...", sig)
		cancel()
	}()

	repo, err := database.NewPostgresRepository(
		l.config.Postgres.Host,
		l.config.Postgres.Port,
		l.config.Postgres.User,
		l.config.Postgres.Password,
		l.config.Postgres.Database,
		l.config.Postgres.SSLMode,
		l.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	defer repo.Close()

	if err := repo.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure database schema: %w", err)
	}
	l.logger.Info("Postgres repository initialized")

	redisCache, err := cache.NewRedisCache(l.config.Redis, l.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer redisCache.Close()

	objStorage, err := storage.NewMinioStorage(l.config.Minio, l.logger)
	if err != nil {
		return fmt.Errorf("failed to connect to Minio: %w", err)
	}

	generator := reports.NewExcelGenerator(l.logger)
	reportService := reports.NewService(repo, generator, objStorage, l.logger)

	engine := aggregate.NewEngine(repo, l.logger)
	aggregator := &invalidatingAggregator{
		engine: engine,
		cache:  redisCache,
		logger: l.logger.WithField("component", "aggregator"),
	}

	coordinator := loader.NewCoordinator(repo, normalizer.New(), aggregator, l.logger)

	kafkaConsumer, err := consumer.NewKafkaConsumer(l.config.Kafka, l.logger)
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer: %w", err)
	}

	handler := func(batchCtx context.Context, snapshots []map[string]interface{}) error {
		result, err := coordinator.LoadBatch(batchCtx, snapshots)
		if result != nil {
			l.logger.Infof("Loaded batch: accepted=%d, rejected=%d", result.Accepted, len(result.Rejected))
		}
		return err
	}

	if err := kafkaConsumer.Consume(ctx, handler); err != nil {
		return fmt.Errorf("failed to start Kafka consumer: %w", err)
	}

	apiHandler := api.NewAPIHandler(repo, reportService, redisCache, l.config.Redis.StatTTL, l.logger)
	middleware := api.NewMiddleware(100, time.Second, l.logger)
	server := api.NewAPIServer(apiHandler, middleware, l.config, l.logger)

	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}

	<-ctx.Done()

	l.logger.Info("Stopping loader...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), l.config.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		l.logger.Errorf("Failed to stop API server: %v", err)
	}
	if err := kafkaConsumer.Close(); err != nil {
		l.logger.Errorf("Failed to close Kafka consumer: %v", err)
	}

	l.logger.Info("Loader stopped gracefully")
	return nil
}

// invalidatingAggregator recomputes a day's rollup and drops the cached
// stats entry so the API serves the fresh value.
type invalidatingAggregator struct {
	engine *aggregate.Engine
	cache  cache.Cache
	logger logger.Logger
}

func (a *invalidatingAggregator) Recompute(ctx context.Context, city string, day time.Time) (*models.DailyStat, error) {
	stat, err := a.engine.Recompute(ctx, city, day)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("stats:%s:%s", city, day.UTC().Format("2006-01-02"))
	if cacheErr := a.cache.Delete(ctx, key); cacheErr != nil {
		a.logger.Warnf("Failed to invalidate cached stats %s: %v", key, cacheErr)
	}

	return stat, nil
}
