package aggregate

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Deven107/weather-etl-pipeline/internal/database"
	"github.com/Deven107/weather-etl-pipeline/internal/models"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

// Engine recomputes a city's daily aggregate row from the day's measurement
// rows. Every recompute is a full rescan of the underlying tables, so the
// result always matches a from-scratch aggregation regardless of how many
// upserts happened in between.
type Engine struct {
	repo   database.HistoryRepository
	logger logger.Logger
}

func NewEngine(repo database.HistoryRepository, log logger.Logger) *Engine {
	return &Engine{
		repo:   repo,
		logger: log.WithField("component", "aggregation_engine"),
	}
}

// Recompute builds the DailyStat for (city, day). With no weather rows it
// returns a stat with SampleCount 0 and nil numeric fields. Rows without an
// air quality sample are excluded from the AQI average, not counted as zero.
func (e *Engine) Recompute(ctx context.Context, city string, day time.Time) (*models.DailyStat, error) {
	weather, err := e.repo.WeatherForDay(ctx, city, day)
	if err != nil {
		return nil, err
	}
	air, err := e.repo.AirQualityForDay(ctx, city, day)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	date := day.UTC()
	date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	stat := &models.DailyStat{
		ID:          uuid.New().String(),
		City:        city,
		Date:        date,
		SampleCount: len(weather),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if len(weather) > 0 {
		var sumTemp, sumHumidity float64
		maxTemp := weather[0].Temperature
		minTemp := weather[0].Temperature

		categoryCounts := make(map[models.TempCategory]int)
		categoryFirstSeen := make(map[models.TempCategory]int)

		for i, record := range weather {
			sumTemp += record.Temperature
			sumHumidity += record.Humidity
			if record.Temperature > maxTemp {
				maxTemp = record.Temperature
			}
			if record.Temperature < minTemp {
				minTemp = record.Temperature
			}

			categoryCounts[record.TempCategory]++
			if _, seen := categoryFirstSeen[record.TempCategory]; !seen {
				categoryFirstSeen[record.TempCategory] = i
			}
		}

		n := float64(len(weather))
		avgTemp := sumTemp / n
		avgHumidity := sumHumidity / n

		stat.AvgTemperature = &avgTemp
		stat.MaxTemperature = &maxTemp
		stat.MinTemperature = &minTemp
		stat.AvgHumidity = &avgHumidity
		stat.DominantCategory = dominantCategory(categoryCounts, categoryFirstSeen)
	}

	if len(air) > 0 {
		var sumAQI float64
		for _, record := range air {
			sumAQI += float64(record.AQI)
		}
		avgAQI := sumAQI / float64(len(air))
		stat.AvgAQI = &avgAQI
	}

	e.logger.Debugf("Recomputed stats for %s on %s: %d samples", city, date.Format("2006-01-02"), stat.SampleCount)
	return stat, nil
}

// dominantCategory picks the mode; ties go to the category observed earliest
// that day.
func dominantCategory(counts map[models.TempCategory]int, firstSeen map[models.TempCategory]int) models.TempCategory {
	var best models.TempCategory
	bestCount := -1
	for category, count := range counts {
		if count > bestCount ||
			(count == bestCount && firstSeen[category] < firstSeen[best]) {
			best = category
			bestCount = count
		}
	}
	return best
}
