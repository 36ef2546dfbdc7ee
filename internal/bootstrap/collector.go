package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Deven107/weather-etl-pipeline/internal/config"
	"github.com/Deven107/weather-etl-pipeline/internal/extractor"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
	"github.com/Deven107/weather-etl-pipeline/internal/producer"
	"github.com/Deven107/weather-etl-pipeline/internal/scheduler"
)

// Collector is the extract side of the pipeline: it polls the provider on a
// schedule and publishes raw snapshots to Kafka.
type Collector struct {
	config *config.Config
	logger logger.Logger
}

func NewCollector() (*Collector, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(cfg.App.LogLevel, cfg.App.Env).WithField("service", "weather-collector")

	return &Collector{
		config: cfg,
		logger: log,
	}, nil
}

func (c *Collector) Run() error {
	c.logger.Info("Starting weather-collector service")
	c.logger.Infof("Environment: %s", c.config.App.Env)
	c.logger.Infof("Tracking %d cities, interval: %v",
		len(c.config.OpenWeather.Cities), c.config.Scheduler.ExtractInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signalChan
		c.logger.Infof("Received signal: %v. Shutting down...", sig)
		cancel()
	}()

	ext := extractor.NewOpenWeatherExtractor(c.config.OpenWeather, c.logger)
	c.logger.Info("OpenWeather extractor initialized")

	kafkaProducer, err := producer.NewKafkaProducer(c.config.Kafka, c.logger)
	if err != nil {
		return fmt.Errorf("failed to create Kafka producer: %w", err)
	}
	defer kafkaProducer.Close()
	c.logger.Infof("Kafka producer initialized for topic: %s", c.config.Kafka.Topic)

	cron := scheduler.NewCronScheduler(c.config.Scheduler.TaskTimeout, c.logger)

	task := func(taskCtx context.Context) error {
		snapshots, err := ext.ExtractBatch(taskCtx, c.config.OpenWeather.Cities)
		if err != nil {
			return fmt.Errorf("extract cycle failed: %w", err)
		}
		if err := kafkaProducer.ProduceBatch(taskCtx, snapshots); err != nil {
			return fmt.Errorf("failed to publish snapshots: %w", err)
		}
		return nil
	}

	if err := cron.Schedule(ctx, c.config.Scheduler.ExtractInterval, task); err != nil {
		return fmt.Errorf("failed to schedule extract task: %w", err)
	}

	<-ctx.Done()

	c.logger.Info("Stopping collector...")
	cron.Stop()

	c.logger.Info("Collector stopped gracefully")
	return nil
}
