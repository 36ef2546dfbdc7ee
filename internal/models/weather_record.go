package models

import (
	"time"
)

// TempCategory buckets a temperature reading. The brackets are fixed and
// cover the whole real line, see metrics.TemperatureCategory.
type TempCategory string

const (
	TempFreezing TempCategory = "freezing"
	TempCold     TempCategory = "cold"
	TempMild     TempCategory = "mild"
	TempWarm     TempCategory = "warm"
	TempHot      TempCategory = "hot"
)

// WeatherRecord is the canonical weather measurement, keyed by
// (city, recorded_at). RecordedAt is UTC with minute precision.
type WeatherRecord struct {
	City             string       `json:"city" db:"city"`
	Latitude         float64      `json:"latitude" db:"latitude"`
	Longitude        float64      `json:"longitude" db:"longitude"`
	RecordedAt       time.Time    `json:"recorded_at" db:"recorded_at"`
	Temperature      float64      `json:"temperature" db:"temperature"`
	FeelsLike        float64      `json:"feels_like" db:"feels_like"`
	Humidity         float64      `json:"humidity" db:"humidity"`
	Pressure         float64      `json:"pressure" db:"pressure"`
	WindSpeed        float64      `json:"wind_speed" db:"wind_speed"`
	WindDeg          float64      `json:"wind_deg" db:"wind_deg"`
	CloudsPercent    float64      `json:"clouds_percent" db:"clouds_percent"`
	Sunrise          time.Time    `json:"sunrise" db:"sunrise"`
	Sunset           time.Time    `json:"sunset" db:"sunset"`
	HeatIndex        float64      `json:"heat_index" db:"heat_index"`
	DayLengthSeconds int          `json:"day_length_seconds" db:"day_length_seconds"`
	TempCategory     TempCategory `json:"temp_category" db:"temp_category"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
}

func (w *WeatherRecord) Validate() error {
	if w.City == "" {
		return MalformedInputError{Field: "city", Reason: "must not be empty"}
	}
	if w.RecordedAt.IsZero() {
		return MalformedInputError{Field: "recorded_at", Reason: "must not be zero"}
	}
	if w.Humidity < 0 || w.Humidity > 100 {
		return InvalidRangeError{Field: "humidity", Reason: "must be between 0 and 100"}
	}
	if w.CloudsPercent < 0 || w.CloudsPercent > 100 {
		return InvalidRangeError{Field: "clouds_percent", Reason: "must be between 0 and 100"}
	}
	if !w.Sunrise.Before(w.Sunset) {
		return InvalidRangeError{Field: "sunrise", Reason: "must precede sunset"}
	}
	return nil
}

// Day returns the UTC calendar day the record belongs to.
func (w *WeatherRecord) Day() time.Time {
	t := w.RecordedAt.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
