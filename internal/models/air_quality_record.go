package models

import (
	"time"
)

// AQICategory buckets the overall air quality index. Categories form a
// monotonic, non-overlapping partition of the index range.
type AQICategory string

const (
	AQIGood               AQICategory = "good"
	AQIModerate           AQICategory = "moderate"
	AQIUnhealthySensitive AQICategory = "unhealthy-sensitive"
	AQIUnhealthy          AQICategory = "unhealthy"
	AQIVeryUnhealthy      AQICategory = "very-unhealthy"
	AQIHazardous          AQICategory = "hazardous"
)

// Pollutant keys as delivered by the provider's components payload.
const (
	PollutantCO   = "co"
	PollutantNO   = "no"
	PollutantNO2  = "no2"
	PollutantO3   = "o3"
	PollutantSO2  = "so2"
	PollutantPM25 = "pm2_5"
	PollutantPM10 = "pm10"
	PollutantNH3  = "nh3"
)

// AirQualityRecord is the canonical air quality measurement, keyed by
// (city, recorded_at). Concentrations are µg/m³ and non-negative.
type AirQualityRecord struct {
	City        string      `json:"city" db:"city"`
	RecordedAt  time.Time   `json:"recorded_at" db:"recorded_at"`
	CO          float64     `json:"co" db:"co"`
	NO          float64     `json:"no" db:"no"`
	NO2         float64     `json:"no2" db:"no2"`
	O3          float64     `json:"o3" db:"o3"`
	SO2         float64     `json:"so2" db:"so2"`
	PM25        float64     `json:"pm2_5" db:"pm2_5"`
	PM10        float64     `json:"pm10" db:"pm10"`
	NH3         float64     `json:"nh3" db:"nh3"`
	AQI         int         `json:"aqi" db:"aqi"`
	AQICategory AQICategory `json:"aqi_category" db:"aqi_category"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}

func (a *AirQualityRecord) Validate() error {
	if a.City == "" {
		return MalformedInputError{Field: "city", Reason: "must not be empty"}
	}
	if a.RecordedAt.IsZero() {
		return MalformedInputError{Field: "recorded_at", Reason: "must not be zero"}
	}
	if a.AQI < 0 {
		return InvalidRangeError{Field: "aqi", Reason: "must not be negative"}
	}
	return nil
}

// Day returns the UTC calendar day the record belongs to.
func (a *AirQualityRecord) Day() time.Time {
	t := a.RecordedAt.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
