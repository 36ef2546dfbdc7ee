package database

import (
	"context"
	"time"

	"github.com/Deven107/weather-etl-pipeline/internal/models"
)

// HistoryRepository owns the three persisted tables: weather measurements,
// air quality measurements and per-city per-day stats. Upserts are
// replace-by-key and idempotent; applying the same record twice leaves the
// stored state unchanged. Failures surface as *models.StorageError.
type HistoryRepository interface {
	UpsertWeather(ctx context.Context, record *models.WeatherRecord) error
	UpsertAirQuality(ctx context.Context, record *models.AirQualityRecord) error

	// WeatherForDay returns all weather rows whose timestamp falls within
	// the UTC calendar day, ordered by recorded_at ascending.
	WeatherForDay(ctx context.Context, city string, day time.Time) ([]models.WeatherRecord, error)
	AirQualityForDay(ctx context.Context, city string, day time.Time) ([]models.AirQualityRecord, error)

	UpsertDailyStat(ctx context.Context, stat *models.DailyStat) error
	// DailyStat returns the aggregate row for (city, day), or nil when absent.
	DailyStat(ctx context.Context, city string, day time.Time) (*models.DailyStat, error)

	HealthCheck(ctx context.Context) error
	Close() error
}

// dayBounds returns the [start, end) window of the UTC calendar day.
func dayBounds(day time.Time) (time.Time, time.Time) {
	t := day.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
