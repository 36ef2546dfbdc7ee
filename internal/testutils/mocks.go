package testutils

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Deven107/weather-etl-pipeline/internal/models"
)

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) UpsertWeather(ctx context.Context, record *models.WeatherRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryRepository) UpsertAirQuality(ctx context.Context, record *models.AirQualityRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryRepository) WeatherForDay(ctx context.Context, city string, day time.Time) ([]models.WeatherRecord, error) {
	args := m.Called(ctx, city, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WeatherRecord), args.Error(1)
}

func (m *MockHistoryRepository) AirQualityForDay(ctx context.Context, city string, day time.Time) ([]models.AirQualityRecord, error) {
	args := m.Called(ctx, city, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.AirQualityRecord), args.Error(1)
}

func (m *MockHistoryRepository) UpsertDailyStat(ctx context.Context, stat *models.DailyStat) error {
	args := m.Called(ctx, stat)
	return args.Error(0)
}

func (m *MockHistoryRepository) DailyStat(ctx context.Context, city string, day time.Time) (*models.DailyStat, error) {
	args := m.Called(ctx, city, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyStat), args.Error(1)
}

func (m *MockHistoryRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockHistoryRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockAggregator struct {
	mock.Mock
}

func (m *MockAggregator) Recompute(ctx context.Context, city string, day time.Time) (*models.DailyStat, error) {
	args := m.Called(ctx, city, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyStat), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Produce(ctx context.Context, snapshot map[string]interface{}) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockProducer) ProduceBatch(ctx context.Context, snapshots []map[string]interface{}) error {
	args := m.Called(ctx, snapshots)
	return args.Error(0)
}

func (m *MockProducer) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockProducer) Close() error {
	args := m.Called()
	return args.Error(0)
}
