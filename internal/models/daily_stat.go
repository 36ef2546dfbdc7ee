package models

import (
	"time"
)

// DailyStat is the per-city per-day aggregate row, keyed by (city, date).
// It is a fully recomputable projection of the measurement tables and is
// never hand-edited. Numeric fields are nil when no underlying rows exist
// for the day (SampleCount 0).
type DailyStat struct {
	ID               string       `json:"id" db:"id"`
	City             string       `json:"city" db:"city"`
	Date             time.Time    `json:"date" db:"date"`
	AvgTemperature   *float64     `json:"avg_temperature" db:"avg_temperature"`
	MaxTemperature   *float64     `json:"max_temperature" db:"max_temperature"`
	MinTemperature   *float64     `json:"min_temperature" db:"min_temperature"`
	AvgHumidity      *float64     `json:"avg_humidity" db:"avg_humidity"`
	AvgAQI           *float64     `json:"avg_aqi" db:"avg_aqi"`
	DominantCategory TempCategory `json:"dominant_category" db:"dominant_category"`
	SampleCount      int          `json:"sample_count" db:"sample_count"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}

// RejectedRecord attributes one rejected input to a specific reason.
type RejectedRecord struct {
	Input  string `json:"input"`
	Reason string `json:"reason"`
}

// LoadResult reports the outcome of one LoadBatch call.
type LoadResult struct {
	Accepted int              `json:"accepted"`
	Rejected []RejectedRecord `json:"rejected"`
}
