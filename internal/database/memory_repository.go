package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Deven107/weather-etl-pipeline/internal/models"
)

// MemoryRepository is a concurrency-safe in-memory HistoryRepository. It
// backs tests and local runs without a Postgres instance; upsert and window
// semantics match the Postgres implementation.
type MemoryRepository struct {
	mu sync.RWMutex

	weather    map[string]map[time.Time]models.WeatherRecord
	airQuality map[string]map[time.Time]models.AirQualityRecord
	stats      map[string]map[time.Time]models.DailyStat
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		weather:    make(map[string]map[time.Time]models.WeatherRecord),
		airQuality: make(map[string]map[time.Time]models.AirQualityRecord),
		stats:      make(map[string]map[time.Time]models.DailyStat),
	}
}

func (r *MemoryRepository) UpsertWeather(ctx context.Context, record *models.WeatherRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byTime, ok := r.weather[record.City]
	if !ok {
		byTime = make(map[time.Time]models.WeatherRecord)
		r.weather[record.City] = byTime
	}
	byTime[record.RecordedAt.UTC()] = *record
	return nil
}

func (r *MemoryRepository) UpsertAirQuality(ctx context.Context, record *models.AirQualityRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byTime, ok := r.airQuality[record.City]
	if !ok {
		byTime = make(map[time.Time]models.AirQualityRecord)
		r.airQuality[record.City] = byTime
	}
	byTime[record.RecordedAt.UTC()] = *record
	return nil
}

func (r *MemoryRepository) WeatherForDay(ctx context.Context, city string, day time.Time) ([]models.WeatherRecord, error) {
	start, end := dayBounds(day)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []models.WeatherRecord
	for ts, record := range r.weather[city] {
		if !ts.Before(start) && ts.Before(end) {
			results = append(results, record)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].RecordedAt.Before(results[j].RecordedAt)
	})
	return results, nil
}

func (r *MemoryRepository) AirQualityForDay(ctx context.Context, city string, day time.Time) ([]models.AirQualityRecord, error) {
	start, end := dayBounds(day)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []models.AirQualityRecord
	for ts, record := range r.airQuality[city] {
		if !ts.Before(start) && ts.Before(end) {
			results = append(results, record)
		}
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].RecordedAt.Before(results[j].RecordedAt)
	})
	return results, nil
}

func (r *MemoryRepository) UpsertDailyStat(ctx context.Context, stat *models.DailyStat) error {
	start, _ := dayBounds(stat.Date)

	r.mu.Lock()
	defer r.mu.Unlock()

	byDay, ok := r.stats[stat.City]
	if !ok {
		byDay = make(map[time.Time]models.DailyStat)
		r.stats[stat.City] = byDay
	}
	byDay[start] = *stat
	return nil
}

func (r *MemoryRepository) DailyStat(ctx context.Context, city string, day time.Time) (*models.DailyStat, error) {
	start, _ := dayBounds(day)

	r.mu.RLock()
	defer r.mu.RUnlock()

	stat, ok := r.stats[city][start]
	if !ok {
		return nil, nil
	}
	return &stat, nil
}

func (r *MemoryRepository) HealthCheck(ctx context.Context) error { return nil }

func (r *MemoryRepository) Close() error { return nil }

// WeatherCount reports the number of stored weather rows for a city, used by
// idempotence tests.
func (r *MemoryRepository) WeatherCount(city string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.weather[city])
}
