package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "weather-etl", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "weather-snapshots-raw", cfg.Kafka.Topic)
	assert.Equal(t, 50, cfg.Kafka.BatchSize)
	assert.Equal(t, time.Hour, cfg.Scheduler.ExtractInterval)
	assert.Equal(t, "disable", cfg.Postgres.SSLMode)
	assert.Equal(t, "/api/v1", cfg.API.BasePath)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:       AppConfig{Port: 8080},
			Kafka:     KafkaConfig{BatchSize: 50},
			Scheduler: SchedulerConfig{ExtractInterval: time.Hour},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validate(base()))
	})

	t.Run("bad port", func(t *testing.T) {
		cfg := base()
		cfg.App.Port = -1
		assert.Error(t, validate(cfg))
	})

	t.Run("zero extract interval", func(t *testing.T) {
		cfg := base()
		cfg.Scheduler.ExtractInterval = 0
		assert.Error(t, validate(cfg))
	})

	t.Run("city without name", func(t *testing.T) {
		cfg := base()
		cfg.OpenWeather.Cities = []City{{Latitude: 51.5, Longitude: -0.12}}
		assert.Error(t, validate(cfg))
	})

	t.Run("city latitude out of range", func(t *testing.T) {
		cfg := base()
		cfg.OpenWeather.Cities = []City{{Name: "Nowhere", Latitude: 123}}
		assert.Error(t, validate(cfg))
	})
}
