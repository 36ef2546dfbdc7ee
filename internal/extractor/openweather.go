package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Deven107/weather-etl-pipeline/internal/config"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

// Extractor pulls raw snapshots from the upstream provider.
type Extractor interface {
	Extract(ctx context.Context, city config.City) (map[string]interface{}, error)
	ExtractBatch(ctx context.Context, cities []config.City) ([]map[string]interface{}, error)
	HealthCheck(ctx context.Context) error
}

var (
	errRateLimited = errors.New("rate limited")
	errServerError = errors.New("server error")
	errCircuitOpen = errors.New("circuit breaker open")
)

// OpenWeatherExtractor fetches the current-weather and air-pollution
// endpoints for each tracked city and assembles the raw snapshot the
// normalizer consumes. Temperatures are requested in the provider's default
// Kelvin; unit conversion is the normalizer's job.
type OpenWeatherExtractor struct {
	client       *http.Client
	breaker      *gobreaker.CircuitBreaker
	baseURL      string
	apiKey       string
	requestDelay time.Duration
	maxRetries   int
	logger       logger.Logger
}

func NewOpenWeatherExtractor(cfg config.OpenWeatherConfig, log logger.Logger) *OpenWeatherExtractor {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "openweather",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &OpenWeatherExtractor{
		client:       &http.Client{Timeout: cfg.RequestTimeout},
		breaker:      breaker,
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		requestDelay: cfg.RequestDelay,
		maxRetries:   cfg.MaxRetries,
		logger:       log.WithField("component", "openweather_extractor"),
	}
}

// Extract fetches both payloads for one city. The snapshot shape matches
// what NormalizeWeather and NormalizeAirQuality expect.
func (e *OpenWeatherExtractor) Extract(ctx context.Context, city config.City) (map[string]interface{}, error) {
	weather, err := e.fetchJSON(ctx, "/weather", city)
	if err != nil {
		return nil, fmt.Errorf("fetch weather for %s: %w", city.Name, err)
	}

	// Pace the second call to respect provider rate limits.
	if err := e.pause(ctx); err != nil {
		return nil, err
	}

	airQuality, err := e.fetchJSON(ctx, "/air_pollution", city)
	if err != nil {
		return nil, fmt.Errorf("fetch air quality for %s: %w", city.Name, err)
	}

	return map[string]interface{}{
		"city":        city.Name,
		"latitude":    city.Latitude,
		"longitude":   city.Longitude,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"weather":     weather,
		"air_quality": airQuality,
	}, nil
}

// ExtractBatch fetches snapshots for all cities, skipping failed cities
// rather than aborting the cycle. It fails only when every city failed.
func (e *OpenWeatherExtractor) ExtractBatch(ctx context.Context, cities []config.City) ([]map[string]interface{}, error) {
	var snapshots []map[string]interface{}
	var failed int

	for i, city := range cities {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if i > 0 {
			if err := e.pause(ctx); err != nil {
				return nil, err
			}
		}

		snapshot, err := e.Extract(ctx, city)
		if err != nil {
			e.logger.Warnf("Failed to extract snapshot for %s: %v", city.Name, err)
			failed++
			continue
		}
		snapshots = append(snapshots, snapshot)
	}

	if len(snapshots) == 0 && failed > 0 {
		return nil, fmt.Errorf("all %d cities failed", failed)
	}

	e.logger.Infof("Extracted %d of %d city snapshots", len(snapshots), len(cities))
	return snapshots, nil
}

func (e *OpenWeatherExtractor) HealthCheck(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/weather?lat=0&lon=0&appid=%s", e.baseURL, url.QueryEscape(e.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}
	return nil
}

// fetchJSON runs one provider call with retries, exponential backoff and the
// circuit breaker, decoding the body into a plain map.
func (e *OpenWeatherExtractor) fetchJSON(ctx context.Context, path string, city config.City) (map[string]interface{}, error) {
	endpoint := fmt.Sprintf("%s%s?lat=%f&lon=%f&appid=%s",
		e.baseURL, path, city.Latitude, city.Longitude, url.QueryEscape(e.apiKey))

	var lastErr error
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		result, err := e.breaker.Execute(func() (interface{}, error) {
			return e.doRequest(ctx, endpoint)
		})
		if err == nil {
			return result.(map[string]interface{}), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}

		lastErr = err
		if attempt == e.maxRetries {
			break
		}

		delay := time.Duration(math.Pow(2, float64(attempt))) * 500 * time.Millisecond
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, lastErr
}

func (e *OpenWeatherExtractor) doRequest(ctx context.Context, endpoint string) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errRateLimited
	}
	if resp.StatusCode >= 500 {
		return nil, errServerError
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return payload, nil
}

func (e *OpenWeatherExtractor) pause(ctx context.Context) error {
	if e.requestDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(e.requestDelay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
