package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/Deven107/weather-etl-pipeline/internal/database"
	"github.com/Deven107/weather-etl-pipeline/internal/models"
	"github.com/Deven107/weather-etl-pipeline/internal/normalizer"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

// Aggregator recomputes one (city, day) aggregate from the store.
type Aggregator interface {
	Recompute(ctx context.Context, city string, day time.Time) (*models.DailyStat, error)
}

// Coordinator drives one batch through the Transform + Load stage:
// normalize, upsert measurement rows, then recompute the daily aggregate
// exactly once for every (city, date) pair the batch touched. Per-record
// errors reject that record and the batch continues; a StorageError aborts
// the remainder of the batch.
type Coordinator struct {
	repo       database.HistoryRepository
	normalizer *normalizer.Normalizer
	aggregator Aggregator
	logger     logger.Logger
}

func NewCoordinator(repo database.HistoryRepository, norm *normalizer.Normalizer, aggregator Aggregator, log logger.Logger) *Coordinator {
	return &Coordinator{
		repo:       repo,
		normalizer: norm,
		aggregator: aggregator,
		logger:     log.WithField("component", "load_coordinator"),
	}
}

type dayKey struct {
	city string
	day  time.Time
}

// LoadBatch is idempotent: every upsert is replace-by-key and every
// aggregate is a full recompute, so re-invoking with the same input yields
// the same stored state. On a storage failure the partial result is returned
// alongside the error.
func (c *Coordinator) LoadBatch(ctx context.Context, snapshots []map[string]interface{}) (*models.LoadResult, error) {
	result := &models.LoadResult{}

	touched := make(map[dayKey]struct{})
	var touchOrder []dayKey
	touch := func(city string, day time.Time) {
		key := dayKey{city: city, day: day}
		if _, ok := touched[key]; !ok {
			touched[key] = struct{}{}
			touchOrder = append(touchOrder, key)
		}
	}

	for _, snapshot := range snapshots {
		label := snapshotLabel(snapshot)

		weather, err := c.normalizer.NormalizeWeather(snapshot)
		if err != nil {
			if !models.IsRecordError(err) {
				return result, err
			}
			result.Rejected = append(result.Rejected, models.RejectedRecord{
				Input:  label,
				Reason: err.Error(),
			})
			c.logger.Warnf("Rejected snapshot %s: %v", label, err)
			continue
		}

		if err := c.repo.UpsertWeather(ctx, weather); err != nil {
			return result, err
		}
		result.Accepted++
		touch(weather.City, weather.Day())

		// The air quality portion succeeds or fails on its own; a bad
		// pollution payload never un-accepts the weather record.
		air, err := c.normalizer.NormalizeAirQuality(snapshot)
		if err != nil {
			if !models.IsRecordError(err) {
				return result, err
			}
			result.Rejected = append(result.Rejected, models.RejectedRecord{
				Input:  label + " (air quality)",
				Reason: err.Error(),
			})
			c.logger.Warnf("Rejected air quality portion of %s: %v", label, err)
			continue
		}

		if err := c.repo.UpsertAirQuality(ctx, air); err != nil {
			return result, err
		}
		touch(air.City, air.Day())
	}

	for _, key := range touchOrder {
		stat, err := c.aggregator.Recompute(ctx, key.city, key.day)
		if err != nil {
			return result, err
		}
		if err := c.repo.UpsertDailyStat(ctx, stat); err != nil {
			return result, err
		}
	}

	c.logger.Infof("Batch loaded: %d accepted, %d rejected, %d aggregates recomputed",
		result.Accepted, len(result.Rejected), len(touchOrder))
	return result, nil
}

// snapshotLabel identifies a snapshot in rejection reports. It is
// best-effort: a snapshot too malformed to carry a city still gets a label.
func snapshotLabel(snapshot map[string]interface{}) string {
	city, _ := snapshot["city"].(string)
	if city == "" {
		city = "<unknown>"
	}
	ts, _ := snapshot["timestamp"].(string)
	if ts == "" {
		ts = "<no timestamp>"
	}
	return fmt.Sprintf("%s@%s", city, ts)
}
