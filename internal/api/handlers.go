package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Deven107/weather-etl-pipeline/internal/cache"
	"github.com/Deven107/weather-etl-pipeline/internal/database"
	"github.com/Deven107/weather-etl-pipeline/internal/models"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportService is the report side the handlers need.
type ReportService interface {
	DailyReport(ctx context.Context, city string, day time.Time) ([]byte, string, error)
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type MeasurementsResponse struct {
	City       string                    `json:"city"`
	Date       string                    `json:"date"`
	Weather    []models.WeatherRecord    `json:"weather"`
	AirQuality []models.AirQualityRecord `json:"air_quality"`
}

type APIHandler struct {
	repo          database.HistoryRepository
	reportService ReportService
	cache         cache.Cache
	statTTL       time.Duration
	logger        logger.Logger
}

func NewAPIHandler(repo database.HistoryRepository, reportService ReportService, respCache cache.Cache, statTTL time.Duration, log logger.Logger) *APIHandler {
	return &APIHandler{
		repo:          repo,
		reportService: reportService,
		cache:         respCache,
		statTTL:       statTTL,
		logger:        log.WithField("component", "api_handler"),
	}
}

func (h *APIHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	checks := gin.H{"database": "ok", "cache": "ok"}

	if err := h.repo.HealthCheck(ctx); err != nil {
		checks["database"] = err.Error()
		status = http.StatusServiceUnavailable
	}
	if h.cache != nil {
		if err := h.cache.HealthCheck(ctx); err != nil {
			checks["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, gin.H{
		"status": http.StatusText(status),
		"checks": checks,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// GetDailyStat serves the per-day rollup for a city, cached in Redis until
// the next recompute invalidates it.
func (h *APIHandler) GetDailyStat(c *gin.Context) {
	ctx := c.Request.Context()

	city := c.Param("city")
	day, ok := h.parseDate(c)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("stats:%s:%s", city, day.Format("2006-01-02"))
	if cached := h.fromCache(ctx, cacheKey); cached != nil {
		c.Data(http.StatusOK, "application/json", cached)
		return
	}

	stat, err := h.repo.DailyStat(ctx, city, day)
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("Failed to load daily stats: %v", err))
		return
	}
	if stat == nil {
		h.respondError(c, http.StatusNotFound, fmt.Sprintf("No stats for %s on %s", city, day.Format("2006-01-02")))
		return
	}

	h.toCache(ctx, cacheKey, stat)
	c.JSON(http.StatusOK, stat)
}

func (h *APIHandler) GetMeasurements(c *gin.Context) {
	ctx := c.Request.Context()

	city := c.Param("city")
	day, ok := h.parseDate(c)
	if !ok {
		return
	}

	weather, err := h.repo.WeatherForDay(ctx, city, day)
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("Failed to load weather measurements: %v", err))
		return
	}

	air, err := h.repo.AirQualityForDay(ctx, city, day)
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("Failed to load air quality measurements: %v", err))
		return
	}

	c.JSON(http.StatusOK, MeasurementsResponse{
		City:       city,
		Date:       day.Format("2006-01-02"),
		Weather:    weather,
		AirQuality: air,
	})
}

func (h *APIHandler) GetDailyReport(c *gin.Context) {
	ctx := c.Request.Context()

	city := c.Query("city")
	if city == "" {
		h.respondError(c, http.StatusBadRequest, "city parameter is required")
		return
	}

	day, ok := h.parseDate(c)
	if !ok {
		return
	}

	data, fileName, err := h.reportService.DailyReport(ctx, city, day)
	if err != nil {
		h.respondError(c, http.StatusInternalServerError, fmt.Sprintf("Failed to generate report: %v", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// parseDate reads the date query parameter, defaulting to today (UTC).
func (h *APIHandler) parseDate(c *gin.Context) (time.Time, bool) {
	dateStr := c.Query("date")
	if dateStr == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), true
	}

	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, "invalid date format, use YYYY-MM-DD")
		return time.Time{}, false
	}
	return day.UTC(), true
}

func (h *APIHandler) fromCache(ctx context.Context, key string) []byte {
	if h.cache == nil {
		return nil
	}
	data, err := h.cache.Get(ctx, key)
	if err != nil {
		h.logger.Warnf("Cache read failed for %s: %v", key, err)
		return nil
	}
	return data
}

func (h *APIHandler) toCache(ctx context.Context, key string, value interface{}) {
	if h.cache == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := h.cache.Set(ctx, key, data, h.statTTL); err != nil {
		h.logger.Warnf("Cache write failed for %s: %v", key, err)
	}
}

func (h *APIHandler) respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
