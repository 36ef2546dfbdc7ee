package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Deven107/weather-etl-pipeline/internal/database"
	"github.com/Deven107/weather-etl-pipeline/internal/models"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

var testLogger = logger.New("error", "development")

type stubReportService struct {
	data []byte
	err  error
}

func (s *stubReportService) DailyReport(ctx context.Context, city string, day time.Time) ([]byte, string, error) {
	if s.err != nil {
		return nil, "", s.err
	}
	return s.data, city + ".xlsx", nil
}

func setupRouter(repo database.HistoryRepository, reportService ReportService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewAPIHandler(repo, reportService, nil, time.Minute, testLogger)

	router := gin.New()
	router.GET("/health", handler.HealthCheck)
	router.GET("/stats/:city", handler.GetDailyStat)
	router.GET("/measurements/:city", handler.GetMeasurements)
	router.GET("/reports/daily", handler.GetDailyReport)
	return router
}

func seedRepo(t *testing.T, repo database.HistoryRepository) {
	t.Helper()
	ctx := context.Background()

	recordedAt := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	err := repo.UpsertWeather(ctx, &models.WeatherRecord{
		City:         "London",
		RecordedAt:   recordedAt,
		Temperature:  18.0,
		FeelsLike:    17.2,
		Humidity:     60,
		Pressure:     1013,
		Sunrise:      recordedAt.Add(-8 * time.Hour),
		Sunset:       recordedAt.Add(8 * time.Hour),
		TempCategory: models.TempMild,
	})
	require.NoError(t, err)

	err = repo.UpsertAirQuality(ctx, &models.AirQualityRecord{
		City:        "London",
		RecordedAt:  recordedAt,
		PM25:        12.0,
		PM10:        20.0,
		AQI:         50,
		AQICategory: models.AQIGood,
	})
	require.NoError(t, err)

	avgTemp := 18.0
	err = repo.UpsertDailyStat(ctx, &models.DailyStat{
		ID:               "stat-1",
		City:             "London",
		Date:             time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		AvgTemperature:   &avgTemp,
		DominantCategory: models.TempMild,
		SampleCount:      1,
	})
	require.NoError(t, err)
}

func TestAPIHandler_HealthCheck(t *testing.T) {
	repo := database.NewMemoryRepository()
	router := setupRouter(repo, &stubReportService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
}

func TestAPIHandler_GetDailyStat(t *testing.T) {
	repo := database.NewMemoryRepository()
	seedRepo(t, repo)
	router := setupRouter(repo, &stubReportService{})

	t.Run("existing stat", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/stats/London?date=2024-06-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var stat models.DailyStat
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stat))
		assert.Equal(t, "London", stat.City)
		require.NotNil(t, stat.AvgTemperature)
		assert.Equal(t, 18.0, *stat.AvgTemperature)
		assert.Equal(t, models.TempMild, stat.DominantCategory)
	})

	t.Run("missing stat returns 404", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/stats/Paris?date=2024-06-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid date returns 400", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/stats/London?date=not-a-date", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAPIHandler_GetMeasurements(t *testing.T) {
	repo := database.NewMemoryRepository()
	seedRepo(t, repo)
	router := setupRouter(repo, &stubReportService{})

	t.Run("returns both series", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/measurements/London?date=2024-06-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body MeasurementsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "London", body.City)
		assert.Len(t, body.Weather, 1)
		assert.Len(t, body.AirQuality, 1)
		assert.Equal(t, 50, body.AirQuality[0].AQI)
	})

	t.Run("empty day", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/measurements/London?date=2024-06-16", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var body MeasurementsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Empty(t, body.Weather)
		assert.Empty(t, body.AirQuality)
	})
}

func TestAPIHandler_GetDailyReport(t *testing.T) {
	repo := database.NewMemoryRepository()
	seedRepo(t, repo)

	t.Run("serves workbook", func(t *testing.T) {
		router := setupRouter(repo, &stubReportService{data: []byte("xlsx-bytes")})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reports/daily?city=London&date=2024-06-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), "London.xlsx")
		assert.Equal(t, "xlsx-bytes", w.Body.String())
	})

	t.Run("missing city returns 400", func(t *testing.T) {
		router := setupRouter(repo, &stubReportService{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/reports/daily?date=2024-06-15", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
