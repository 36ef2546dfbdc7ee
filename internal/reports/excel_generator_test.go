package reports

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Deven107/weather-etl-pipeline/internal/models"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

var testLogger = logger.New("error", "development")

func sampleDay() time.Time {
	return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
}

func sampleWeather() []models.WeatherRecord {
	return []models.WeatherRecord{
		{
			City:             "London",
			RecordedAt:       sampleDay().Add(12 * time.Hour),
			Temperature:      18.5,
			FeelsLike:        17.9,
			HeatIndex:        18.5,
			TempCategory:     models.TempMild,
			Humidity:         60,
			Pressure:         1013,
			WindSpeed:        5.2,
			CloudsPercent:    40,
			DayLengthSeconds: 16 * 3600,
		},
	}
}

func sampleAir() []models.AirQualityRecord {
	return []models.AirQualityRecord{
		{
			City:        "London",
			RecordedAt:  sampleDay().Add(12 * time.Hour),
			PM25:        12.0,
			PM10:        20.0,
			NO2:         15.0,
			AQI:         50,
			AQICategory: models.AQIGood,
		},
	}
}

func TestExcelGenerator_GenerateDailyReport(t *testing.T) {
	generator := NewExcelGenerator(testLogger)

	avgTemp := 18.5
	stat := &models.DailyStat{
		City:             "London",
		Date:             sampleDay(),
		AvgTemperature:   &avgTemp,
		DominantCategory: models.TempMild,
		SampleCount:      1,
	}

	data, err := generator.GenerateDailyReport("London", sampleDay(), sampleWeather(), sampleAir(), stat)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Weather", "Air Quality", "Summary"}, f.GetSheetList())

	title, err := f.GetCellValue("Weather", "A1")
	require.NoError(t, err)
	assert.Contains(t, title, "London")

	temp, err := f.GetCellValue("Weather", "B3")
	require.NoError(t, err)
	assert.Equal(t, "18.5", temp)

	aqi, err := f.GetCellValue("Air Quality", "B2")
	require.NoError(t, err)
	assert.Equal(t, "50", aqi)

	category, err := f.GetCellValue("Summary", "B6")
	require.NoError(t, err)
	assert.Equal(t, "mild", category)
}

func TestExcelGenerator_GenerateDailyReport_EmptyDay(t *testing.T) {
	generator := NewExcelGenerator(testLogger)

	data, err := generator.GenerateDailyReport("London", sampleDay(), nil, nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	avgTemp, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "", avgTemp)

	samples, err := f.GetCellValue("Summary", "B7")
	require.NoError(t, err)
	assert.Equal(t, "0", samples)
}
