package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeatherRecord_Validate(t *testing.T) {
	base := func() *WeatherRecord {
		return &WeatherRecord{
			City:       "London",
			RecordedAt: time.Date(2024, 3, 21, 14, 0, 0, 0, time.UTC),
			Humidity:   65,
			Sunrise:    time.Date(2024, 3, 21, 6, 0, 0, 0, time.UTC),
			Sunset:     time.Date(2024, 3, 21, 18, 0, 0, 0, time.UTC),
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("empty city", func(t *testing.T) {
		record := base()
		record.City = ""
		assert.Error(t, record.Validate())
	})

	t.Run("humidity out of range", func(t *testing.T) {
		record := base()
		record.Humidity = 101
		err := record.Validate()
		assert.Error(t, err)
		assert.IsType(t, InvalidRangeError{}, err)
	})

	t.Run("sunrise after sunset", func(t *testing.T) {
		record := base()
		record.Sunrise, record.Sunset = record.Sunset, record.Sunrise
		assert.Error(t, record.Validate())
	})
}

func TestWeatherRecord_Day(t *testing.T) {
	record := &WeatherRecord{
		RecordedAt: time.Date(2024, 3, 21, 23, 59, 0, 0, time.FixedZone("CET", 3600)),
	}
	// 23:59 CET is 22:59 UTC, still March 21 in UTC.
	assert.Equal(t, time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), record.Day())
}

func TestIsRecordError(t *testing.T) {
	assert.True(t, IsRecordError(MalformedInputError{Field: "city", Reason: "missing"}))
	assert.True(t, IsRecordError(InvalidRangeError{Field: "day_length", Reason: "negative"}))
	assert.True(t, IsRecordError(UnknownPollutantError{Pollutant: "pm2_5"}))
	assert.False(t, IsRecordError(&StorageError{Op: "ping", Err: errors.New("down")}))
	assert.False(t, IsRecordError(errors.New("generic")))
}

func TestStorageError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &StorageError{Op: "upsert weather", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "upsert weather")
}
