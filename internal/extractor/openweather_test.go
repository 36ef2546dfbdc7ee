package extractor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deven107/weather-etl-pipeline/internal/config"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

var testLogger = logger.New("error", "development")

func testCity() config.City {
	return config.City{Name: "London", Latitude: 51.5074, Longitude: -0.1278}
}

func testConfig(baseURL string) config.OpenWeatherConfig {
	return config.OpenWeatherConfig{
		BaseURL:        baseURL,
		APIKey:         "test-key",
		RequestTimeout: 5 * time.Second,
		RequestDelay:   0,
		MaxRetries:     1,
	}
}

func weatherPayload() map[string]interface{} {
	return map[string]interface{}{
		"main": map[string]interface{}{
			"temp":       288.15,
			"feels_like": 287.4,
			"pressure":   1013,
			"humidity":   65,
		},
		"wind":   map[string]interface{}{"speed": 5.2, "deg": 180},
		"clouds": map[string]interface{}{"all": 40},
		"sys":    map[string]interface{}{"sunrise": 1672531200, "sunset": 1672560000},
	}
}

func airQualityPayload() map[string]interface{} {
	return map[string]interface{}{
		"list": []interface{}{
			map[string]interface{}{
				"components": map[string]interface{}{
					"pm2_5": 12.0,
					"pm10":  20.0,
					"no2":   15.0,
				},
			},
		},
	}
}

func TestOpenWeatherExtractor_Extract(t *testing.T) {
	t.Run("successful extract", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.String(), "appid=test-key")
			assert.Contains(t, r.URL.String(), "lat=51.5")

			w.Header().Set("Content-Type", "application/json")
			if strings.Contains(r.URL.Path, "air_pollution") {
				json.NewEncoder(w).Encode(airQualityPayload())
				return
			}
			json.NewEncoder(w).Encode(weatherPayload())
		}))
		defer server.Close()

		ext := NewOpenWeatherExtractor(testConfig(server.URL), testLogger)

		snapshot, err := ext.Extract(context.Background(), testCity())

		require.NoError(t, err)
		assert.Equal(t, "London", snapshot["city"])
		assert.Equal(t, 51.5074, snapshot["latitude"])

		_, err = time.Parse(time.RFC3339, snapshot["timestamp"].(string))
		assert.NoError(t, err)

		weather, ok := snapshot["weather"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, weather, "main")

		air, ok := snapshot["air_quality"].(map[string]interface{})
		require.True(t, ok)
		assert.Contains(t, air, "list")
	})

	t.Run("provider error surfaces", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{"cod": 401, "message": "invalid api key"})
		}))
		defer server.Close()

		ext := NewOpenWeatherExtractor(testConfig(server.URL), testLogger)

		snapshot, err := ext.Extract(context.Background(), testCity())

		assert.Error(t, err)
		assert.Nil(t, snapshot)
		assert.Contains(t, err.Error(), "status 401")
	})

	t.Run("retries on server error", func(t *testing.T) {
		attempts := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts++
			if attempts == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if strings.Contains(r.URL.Path, "air_pollution") {
				json.NewEncoder(w).Encode(airQualityPayload())
				return
			}
			json.NewEncoder(w).Encode(weatherPayload())
		}))
		defer server.Close()

		ext := NewOpenWeatherExtractor(testConfig(server.URL), testLogger)

		snapshot, err := ext.Extract(context.Background(), testCity())

		require.NoError(t, err)
		assert.NotNil(t, snapshot)
		assert.GreaterOrEqual(t, attempts, 3)
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte("invalid json"))
		}))
		defer server.Close()

		ext := NewOpenWeatherExtractor(testConfig(server.URL), testLogger)

		snapshot, err := ext.Extract(context.Background(), testCity())

		assert.Error(t, err)
		assert.Nil(t, snapshot)
		assert.Contains(t, err.Error(), "failed to decode response")
	})

	t.Run("cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(weatherPayload())
		}))
		defer server.Close()

		ext := NewOpenWeatherExtractor(testConfig(server.URL), testLogger)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := ext.Extract(ctx, testCity())
		assert.Error(t, err)
	})
}

func TestOpenWeatherExtractor_ExtractBatch(t *testing.T) {
	t.Run("skips failing city", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if strings.Contains(r.URL.String(), "lat=0.0") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if strings.Contains(r.URL.Path, "air_pollution") {
				json.NewEncoder(w).Encode(airQualityPayload())
				return
			}
			json.NewEncoder(w).Encode(weatherPayload())
		}))
		defer server.Close()

		ext := NewOpenWeatherExtractor(testConfig(server.URL), testLogger)

		cities := []config.City{
			testCity(),
			{Name: "Nowhere", Latitude: 0, Longitude: 0},
		}

		snapshots, err := ext.ExtractBatch(context.Background(), cities)

		require.NoError(t, err)
		require.Len(t, snapshots, 1)
		assert.Equal(t, "London", snapshots[0]["city"])
	})

	t.Run("fails when all cities fail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		ext := NewOpenWeatherExtractor(testConfig(server.URL), testLogger)

		snapshots, err := ext.ExtractBatch(context.Background(), []config.City{testCity()})

		assert.Error(t, err)
		assert.Nil(t, snapshots)
	})
}

func TestOpenWeatherExtractor_HealthCheck(t *testing.T) {
	t.Run("healthy provider", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(weatherPayload())
		}))
		defer server.Close()

		ext := NewOpenWeatherExtractor(testConfig(server.URL), testLogger)

		assert.NoError(t, ext.HealthCheck(context.Background()))
	})

	t.Run("unhealthy provider", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		ext := NewOpenWeatherExtractor(testConfig(server.URL), testLogger)

		assert.Error(t, ext.HealthCheck(context.Background()))
	})
}
