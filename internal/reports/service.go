package reports

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Deven107/weather-etl-pipeline/internal/database"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
	"github.com/Deven107/weather-etl-pipeline/internal/storage"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Service produces daily xlsx reports and keeps them in object storage.
// Reports are generated on demand and cached under a deterministic key, so
// repeated requests for the same city and day reuse the stored file.
type Service struct {
	repo      database.HistoryRepository
	generator Generator
	storage   storage.ObjectStorage
	logger    logger.Logger
}

func NewService(repo database.HistoryRepository, generator Generator, objStorage storage.ObjectStorage, log logger.Logger) *Service {
	return &Service{
		repo:      repo,
		generator: generator,
		storage:   objStorage,
		logger:    log.WithField("component", "report_service"),
	}
}

// DailyReport returns the xlsx workbook for a city and day, generating and
// uploading it if object storage does not have it yet.
func (s *Service) DailyReport(ctx context.Context, city string, day time.Time) ([]byte, string, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	key := s.storageKey(city, day)
	fileName := fmt.Sprintf("%s-%s.xlsx", city, day.Format("2006-01-02"))

	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		s.logger.Warnf("Failed to check stored report %s: %v", key, err)
	}
	if exists {
		object, err := s.storage.Download(ctx, key)
		if err == nil {
			defer object.Close()
			data, err := io.ReadAll(object)
			if err == nil {
				s.logger.Debugf("Served stored report %s", key)
				return data, fileName, nil
			}
			s.logger.Warnf("Failed to read stored report %s: %v", key, err)
		}
	}

	data, err := s.generate(ctx, city, day)
	if err != nil {
		return nil, "", err
	}

	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), xlsxContentType); err != nil {
		// Serve the report anyway; the next request regenerates it.
		s.logger.Warnf("Failed to upload report %s: %v", key, err)
	}

	return data, fileName, nil
}

// Regenerate rebuilds and re-uploads a report, replacing any stored copy.
// Called after a day's rollup changes.
func (s *Service) Regenerate(ctx context.Context, city string, day time.Time) error {
	day = day.UTC().Truncate(24 * time.Hour)
	key := s.storageKey(city, day)

	data, err := s.generate(ctx, city, day)
	if err != nil {
		return err
	}

	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), xlsxContentType); err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}

	s.logger.Infof("Regenerated report %s", key)
	return nil
}

func (s *Service) generate(ctx context.Context, city string, day time.Time) ([]byte, error) {
	weather, err := s.repo.WeatherForDay(ctx, city, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load weather measurements: %w", err)
	}

	air, err := s.repo.AirQualityForDay(ctx, city, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load air quality measurements: %w", err)
	}

	stat, err := s.repo.DailyStat(ctx, city, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily stat: %w", err)
	}

	return s.generator.GenerateDailyReport(city, day, weather, air, stat)
}

func (s *Service) storageKey(city string, day time.Time) string {
	return fmt.Sprintf("daily/%s/%s.xlsx", city, day.Format("2006-01-02"))
}
