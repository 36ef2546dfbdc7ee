package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deven107/weather-etl-pipeline/internal/models"
)

func TestHeatIndex(t *testing.T) {
	t.Run("identity below comfort threshold", func(t *testing.T) {
		assert.Equal(t, 20.0, HeatIndex(20.0, 90))
		assert.Equal(t, -5.0, HeatIndex(-5.0, 50))
		assert.Equal(t, 26.9, HeatIndex(26.9, 100))
	})

	t.Run("amplifies above threshold in humid air", func(t *testing.T) {
		hi := HeatIndex(35, 70)
		assert.Greater(t, hi, 35.0)
	})

	t.Run("never below input when humidity above 40", func(t *testing.T) {
		for temp := 27.0; temp <= 45; temp += 1.5 {
			for humidity := 41.0; humidity <= 100; humidity += 7 {
				hi := HeatIndex(temp, humidity)
				assert.GreaterOrEqual(t, hi, temp,
					"temp=%v humidity=%v", temp, humidity)
			}
		}
	})

	t.Run("monotonic in humidity for hot air", func(t *testing.T) {
		prev := HeatIndex(38, 45)
		for humidity := 50.0; humidity <= 100; humidity += 5 {
			hi := HeatIndex(38, humidity)
			assert.GreaterOrEqual(t, hi, prev)
			prev = hi
		}
	})
}

func TestDayLengthSeconds(t *testing.T) {
	t.Run("london twelve hour day", func(t *testing.T) {
		sunrise := time.Date(2024, 3, 21, 6, 0, 0, 0, time.UTC)
		sunset := time.Date(2024, 3, 21, 18, 0, 0, 0, time.UTC)

		seconds, err := DayLengthSeconds(sunrise, sunset)
		require.NoError(t, err)
		assert.Equal(t, 43200, seconds)
	})

	t.Run("sunset before sunrise", func(t *testing.T) {
		sunrise := time.Date(2024, 3, 21, 18, 0, 0, 0, time.UTC)
		sunset := time.Date(2024, 3, 21, 6, 0, 0, 0, time.UTC)

		_, err := DayLengthSeconds(sunrise, sunset)
		require.Error(t, err)
		assert.IsType(t, models.InvalidRangeError{}, err)
	})

	t.Run("length exceeding a day", func(t *testing.T) {
		sunrise := time.Date(2024, 3, 21, 6, 0, 0, 0, time.UTC)
		sunset := time.Date(2024, 3, 23, 6, 0, 0, 0, time.UTC)

		_, err := DayLengthSeconds(sunrise, sunset)
		require.Error(t, err)
		assert.IsType(t, models.InvalidRangeError{}, err)
	})

	t.Run("zero length day is valid", func(t *testing.T) {
		ts := time.Date(2024, 3, 21, 6, 0, 0, 0, time.UTC)

		seconds, err := DayLengthSeconds(ts, ts)
		require.NoError(t, err)
		assert.Equal(t, 0, seconds)
	})
}

func TestTemperatureCategory(t *testing.T) {
	cases := []struct {
		temp     float64
		expected models.TempCategory
	}{
		{-40, models.TempFreezing},
		{-0.1, models.TempFreezing},
		{0, models.TempCold},
		{9.9, models.TempCold},
		{10, models.TempMild},
		{19.9, models.TempMild},
		{20, models.TempWarm},
		{29.9, models.TempWarm},
		{30, models.TempHot},
		{55, models.TempHot},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, TemperatureCategory(tc.temp), "temp=%v", tc.temp)
	}
}

func TestTemperatureCategory_Total(t *testing.T) {
	// Every value including the infinities must land in exactly one bracket.
	for _, temp := range []float64{math.Inf(-1), -273.15, 0, 15, 100, math.Inf(1)} {
		category := TemperatureCategory(temp)
		assert.NotEmpty(t, category, "temp=%v", temp)
	}
}

func TestComputeAQI(t *testing.T) {
	t.Run("hazardous pm2_5", func(t *testing.T) {
		aqi, category, err := ComputeAQI(map[string]float64{
			models.PollutantPM25: 500,
			models.PollutantPM10: 20,
		})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, aqi, 301)
		assert.Equal(t, models.AQIHazardous, category)
	})

	t.Run("clean air is good", func(t *testing.T) {
		aqi, category, err := ComputeAQI(map[string]float64{
			models.PollutantPM25: 5,
			models.PollutantPM10: 10,
			models.PollutantNO2:  12,
			models.PollutantO3:   40,
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, aqi, 50)
		assert.Equal(t, models.AQIGood, category)
	})

	t.Run("worst pollutant wins", func(t *testing.T) {
		low, _, err := ComputeAQI(map[string]float64{
			models.PollutantPM25: 5,
			models.PollutantPM10: 10,
		})
		require.NoError(t, err)

		high, _, err := ComputeAQI(map[string]float64{
			models.PollutantPM25: 5,
			models.PollutantPM10: 10,
			models.PollutantSO2:  900,
		})
		require.NoError(t, err)
		assert.Greater(t, high, low)
	})

	t.Run("missing required pollutant", func(t *testing.T) {
		_, _, err := ComputeAQI(map[string]float64{
			models.PollutantPM10: 20,
		})
		require.Error(t, err)
		assert.IsType(t, models.UnknownPollutantError{}, err)
	})

	t.Run("missing optional pollutants are skipped", func(t *testing.T) {
		_, _, err := ComputeAQI(map[string]float64{
			models.PollutantPM25: 10,
			models.PollutantPM10: 20,
		})
		assert.NoError(t, err)
	})

	t.Run("unregistered pollutants are ignored", func(t *testing.T) {
		with, _, err := ComputeAQI(map[string]float64{
			models.PollutantPM25: 10,
			models.PollutantPM10: 20,
			models.PollutantNH3:  9000,
		})
		require.NoError(t, err)

		without, _, err := ComputeAQI(map[string]float64{
			models.PollutantPM25: 10,
			models.PollutantPM10: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, without, with)
	})
}

func TestComputeAQI_Monotonic(t *testing.T) {
	// Increasing a single pollutant's concentration must never decrease the
	// index, including across band boundaries and beyond the top band.
	for name := range pollutantScales {
		base := map[string]float64{
			models.PollutantPM25: 1,
			models.PollutantPM10: 1,
		}
		prev := -1
		for c := 0.0; c <= 60000; c += 37.5 {
			base[name] = c
			aqi, _, err := ComputeAQI(base)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, aqi, prev, "pollutant=%s c=%v", name, c)
			prev = aqi
		}
	}
}

func TestAQICategoryFor_Partition(t *testing.T) {
	// Categories are a monotonic, non-overlapping partition of the index
	// range: walking the range never revisits an earlier category.
	seen := map[models.AQICategory]bool{}
	var last models.AQICategory
	for aqi := 0; aqi <= 600; aqi++ {
		category := AQICategoryFor(aqi)
		require.NotEmpty(t, category)
		if category != last {
			assert.False(t, seen[category], "category %s repeated at aqi=%d", category, aqi)
			seen[category] = true
			last = category
		}
	}
	assert.Len(t, seen, 6)
}

func TestRequiredPollutants(t *testing.T) {
	required := RequiredPollutants()
	assert.ElementsMatch(t, []string{models.PollutantPM25, models.PollutantPM10}, required)
}
