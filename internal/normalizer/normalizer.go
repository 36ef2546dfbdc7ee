package normalizer

import (
	"time"

	"github.com/Deven107/weather-etl-pipeline/internal/metrics"
	"github.com/Deven107/weather-etl-pipeline/internal/models"
)

const kelvinOffset = 273.15

// Normalizer maps provider snapshots onto the canonical record shapes.
// A snapshot is the plain map emitted by the collector: city, latitude,
// longitude, timestamp, plus the provider's current-weather payload under
// "weather" and the air pollution payload under "air_quality".
//
// The weather and air quality portions normalize independently so a broken
// pollution payload cannot sink the weather record.
type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

// NormalizeWeather validates the snapshot against the weather field contract
// and produces a WeatherRecord with derived metrics attached. Temperatures
// arrive in Kelvin and are converted to Celsius; humidity and cloud cover are
// clamped to [0,100] rather than rejected.
func (n *Normalizer) NormalizeWeather(snapshot map[string]interface{}) (*models.WeatherRecord, error) {
	city, err := getString(snapshot, "city")
	if err != nil {
		return nil, err
	}
	recordedAt, err := getTimestamp(snapshot, "timestamp")
	if err != nil {
		return nil, err
	}

	weather, err := getMap(snapshot, "weather")
	if err != nil {
		return nil, err
	}
	main, err := getMap(weather, "main")
	if err != nil {
		return nil, wrapField("weather.main", err)
	}
	sys, err := getMap(weather, "sys")
	if err != nil {
		return nil, wrapField("weather.sys", err)
	}

	temp, err := getFloat(main, "temp")
	if err != nil {
		return nil, wrapField("weather.main.temp", err)
	}
	feelsLike, err := getFloat(main, "feels_like")
	if err != nil {
		return nil, wrapField("weather.main.feels_like", err)
	}
	humidity, err := getFloat(main, "humidity")
	if err != nil {
		return nil, wrapField("weather.main.humidity", err)
	}
	pressure, err := getFloat(main, "pressure")
	if err != nil {
		return nil, wrapField("weather.main.pressure", err)
	}

	sunriseUnix, err := getFloat(sys, "sunrise")
	if err != nil {
		return nil, wrapField("weather.sys.sunrise", err)
	}
	sunsetUnix, err := getFloat(sys, "sunset")
	if err != nil {
		return nil, wrapField("weather.sys.sunset", err)
	}
	sunrise := time.Unix(int64(sunriseUnix), 0).UTC()
	sunset := time.Unix(int64(sunsetUnix), 0).UTC()

	record := &models.WeatherRecord{
		City:        city,
		Latitude:    optionalFloat(snapshot, "latitude"),
		Longitude:   optionalFloat(snapshot, "longitude"),
		RecordedAt:  recordedAt,
		Temperature: temp - kelvinOffset,
		FeelsLike:   feelsLike - kelvinOffset,
		Humidity:    clamp(humidity, 0, 100),
		Pressure:    pressure,
		Sunrise:     sunrise,
		Sunset:      sunset,
		CreatedAt:   time.Now().UTC(),
	}

	// Wind and cloud cover are optional in the provider payload.
	if wind, err := getMap(weather, "wind"); err == nil {
		record.WindSpeed = optionalFloat(wind, "speed")
		record.WindDeg = optionalFloat(wind, "deg")
	}
	if clouds, err := getMap(weather, "clouds"); err == nil {
		record.CloudsPercent = clamp(optionalFloat(clouds, "all"), 0, 100)
	}

	dayLength, err := metrics.DayLengthSeconds(record.Sunrise, record.Sunset)
	if err != nil {
		return nil, err
	}
	record.DayLengthSeconds = dayLength
	record.HeatIndex = metrics.HeatIndex(record.Temperature, record.Humidity)
	record.TempCategory = metrics.TemperatureCategory(record.Temperature)

	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

// NormalizeAirQuality validates the snapshot against the air quality field
// contract and produces an AirQualityRecord with the computed AQI. Negative
// concentrations are clamped to zero; a missing mandatory pollutant yields
// UnknownPollutantError.
func (n *Normalizer) NormalizeAirQuality(snapshot map[string]interface{}) (*models.AirQualityRecord, error) {
	city, err := getString(snapshot, "city")
	if err != nil {
		return nil, err
	}
	recordedAt, err := getTimestamp(snapshot, "timestamp")
	if err != nil {
		return nil, err
	}

	airQuality, err := getMap(snapshot, "air_quality")
	if err != nil {
		return nil, err
	}
	list, ok := airQuality["list"].([]interface{})
	if !ok || len(list) == 0 {
		return nil, models.MalformedInputError{Field: "air_quality.list", Reason: "missing or empty"}
	}
	entry, ok := list[0].(map[string]interface{})
	if !ok {
		return nil, models.MalformedInputError{Field: "air_quality.list[0]", Reason: "not an object"}
	}
	components, err := getMap(entry, "components")
	if err != nil {
		return nil, wrapField("air_quality.list[0].components", err)
	}

	pollutants := make(map[string]float64, len(components))
	for name, raw := range components {
		value, ok := asFloat(raw)
		if !ok {
			return nil, models.MalformedInputError{Field: "air_quality." + name, Reason: "not a number"}
		}
		if value < 0 {
			value = 0
		}
		pollutants[name] = value
	}

	aqi, category, err := metrics.ComputeAQI(pollutants)
	if err != nil {
		return nil, err
	}

	record := &models.AirQualityRecord{
		City:        city,
		RecordedAt:  recordedAt,
		CO:          pollutants[models.PollutantCO],
		NO:          pollutants[models.PollutantNO],
		NO2:         pollutants[models.PollutantNO2],
		O3:          pollutants[models.PollutantO3],
		SO2:         pollutants[models.PollutantSO2],
		PM25:        pollutants[models.PollutantPM25],
		PM10:        pollutants[models.PollutantPM10],
		NH3:         pollutants[models.PollutantNH3],
		AQI:         aqi,
		AQICategory: category,
		CreatedAt:   time.Now().UTC(),
	}

	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

func getMap(m map[string]interface{}, key string) (map[string]interface{}, error) {
	raw, ok := m[key]
	if !ok {
		return nil, models.MalformedInputError{Field: key, Reason: "missing"}
	}
	value, ok := raw.(map[string]interface{})
	if !ok {
		return nil, models.MalformedInputError{Field: key, Reason: "not an object"}
	}
	return value, nil
}

func getString(m map[string]interface{}, key string) (string, error) {
	raw, ok := m[key]
	if !ok {
		return "", models.MalformedInputError{Field: key, Reason: "missing"}
	}
	value, ok := raw.(string)
	if !ok || value == "" {
		return "", models.MalformedInputError{Field: key, Reason: "not a non-empty string"}
	}
	return value, nil
}

func getFloat(m map[string]interface{}, key string) (float64, error) {
	raw, ok := m[key]
	if !ok {
		return 0, models.MalformedInputError{Field: key, Reason: "missing"}
	}
	value, ok := asFloat(raw)
	if !ok {
		return 0, models.MalformedInputError{Field: key, Reason: "not a number"}
	}
	return value, nil
}

// getTimestamp parses an RFC3339 timestamp and normalizes it to UTC with
// minute precision, the canonical key resolution.
func getTimestamp(m map[string]interface{}, key string) (time.Time, error) {
	raw, err := getString(m, key)
	if err != nil {
		return time.Time{}, err
	}
	t, parseErr := time.Parse(time.RFC3339, raw)
	if parseErr != nil {
		return time.Time{}, models.MalformedInputError{Field: key, Reason: "not an RFC3339 timestamp"}
	}
	return t.UTC().Truncate(time.Minute), nil
}

func optionalFloat(m map[string]interface{}, key string) float64 {
	value, ok := asFloat(m[key])
	if !ok {
		return 0
	}
	return value
}

// asFloat accepts the numeric shapes a decoded JSON payload can carry.
func asFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

func wrapField(path string, err error) error {
	if malformed, ok := err.(models.MalformedInputError); ok {
		return models.MalformedInputError{Field: path, Reason: malformed.Reason}
	}
	return err
}
