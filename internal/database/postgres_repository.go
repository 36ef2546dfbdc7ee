package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Deven107/weather-etl-pipeline/internal/models"
	"github.com/Deven107/weather-etl-pipeline/internal/pkg/logger"
)

type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresRepository(host string, port int, user, password, database, sslMode string, log logger.Logger) (*PostgresRepository, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		user, password, host, port, database, sslMode)

	pool, err := pgxpool.New(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return &PostgresRepository{
		pool:   pool,
		logger: log.WithField("component", "postgres_repository"),
	}, nil
}

// EnsureSchema creates the measurement and stats tables when they do not
// exist yet. Each statement runs inside one transaction.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS weather_measurements (
			city TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
			temperature DOUBLE PRECISION NOT NULL,
			feels_like DOUBLE PRECISION NOT NULL,
			humidity DOUBLE PRECISION NOT NULL,
			pressure DOUBLE PRECISION NOT NULL,
			wind_speed DOUBLE PRECISION NOT NULL DEFAULT 0,
			wind_deg DOUBLE PRECISION NOT NULL DEFAULT 0,
			clouds_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
			sunrise TIMESTAMPTZ NOT NULL,
			sunset TIMESTAMPTZ NOT NULL,
			heat_index DOUBLE PRECISION NOT NULL,
			day_length_seconds INTEGER NOT NULL,
			temp_category TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (city, recorded_at)
		)`,
		`CREATE TABLE IF NOT EXISTS air_quality_measurements (
			city TEXT NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL,
			co DOUBLE PRECISION NOT NULL DEFAULT 0,
			no DOUBLE PRECISION NOT NULL DEFAULT 0,
			no2 DOUBLE PRECISION NOT NULL DEFAULT 0,
			o3 DOUBLE PRECISION NOT NULL DEFAULT 0,
			so2 DOUBLE PRECISION NOT NULL DEFAULT 0,
			pm2_5 DOUBLE PRECISION NOT NULL DEFAULT 0,
			pm10 DOUBLE PRECISION NOT NULL DEFAULT 0,
			nh3 DOUBLE PRECISION NOT NULL DEFAULT 0,
			aqi INTEGER NOT NULL,
			aqi_category TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (city, recorded_at)
		)`,
		`CREATE TABLE IF NOT EXISTS city_daily_stats (
			id TEXT NOT NULL,
			city TEXT NOT NULL,
			date DATE NOT NULL,
			avg_temperature DOUBLE PRECISION,
			max_temperature DOUBLE PRECISION,
			min_temperature DOUBLE PRECISION,
			avg_humidity DOUBLE PRECISION,
			avg_aqi DOUBLE PRECISION,
			dominant_category TEXT NOT NULL DEFAULT '',
			sample_count INTEGER NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (city, date)
		)`,
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return &models.StorageError{Op: "ensure schema", Err: err}
	}
	defer tx.Rollback(ctx)

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return &models.StorageError{Op: "ensure schema", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return &models.StorageError{Op: "ensure schema", Err: err}
	}

	r.logger.Info("Schema ensured")
	return nil
}

func (r *PostgresRepository) UpsertWeather(ctx context.Context, record *models.WeatherRecord) error {
	query := `
		INSERT INTO weather_measurements (
			city, recorded_at, latitude, longitude, temperature, feels_like,
			humidity, pressure, wind_speed, wind_deg, clouds_percent,
			sunrise, sunset, heat_index, day_length_seconds, temp_category, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (city, recorded_at) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			temperature = EXCLUDED.temperature,
			feels_like = EXCLUDED.feels_like,
			humidity = EXCLUDED.humidity,
			pressure = EXCLUDED.pressure,
			wind_speed = EXCLUDED.wind_speed,
			wind_deg = EXCLUDED.wind_deg,
			clouds_percent = EXCLUDED.clouds_percent,
			sunrise = EXCLUDED.sunrise,
			sunset = EXCLUDED.sunset,
			heat_index = EXCLUDED.heat_index,
			day_length_seconds = EXCLUDED.day_length_seconds,
			temp_category = EXCLUDED.temp_category
	`

	_, err := r.pool.Exec(ctx, query,
		record.City,
		record.RecordedAt,
		record.Latitude,
		record.Longitude,
		record.Temperature,
		record.FeelsLike,
		record.Humidity,
		record.Pressure,
		record.WindSpeed,
		record.WindDeg,
		record.CloudsPercent,
		record.Sunrise,
		record.Sunset,
		record.HeatIndex,
		record.DayLengthSeconds,
		record.TempCategory,
		record.CreatedAt,
	)
	if err != nil {
		return &models.StorageError{Op: "upsert weather", Err: err}
	}
	return nil
}

func (r *PostgresRepository) UpsertAirQuality(ctx context.Context, record *models.AirQualityRecord) error {
	query := `
		INSERT INTO air_quality_measurements (
			city, recorded_at, co, no, no2, o3, so2, pm2_5, pm10, nh3,
			aqi, aqi_category, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (city, recorded_at) DO UPDATE SET
			co = EXCLUDED.co,
			no = EXCLUDED.no,
			no2 = EXCLUDED.no2,
			o3 = EXCLUDED.o3,
			so2 = EXCLUDED.so2,
			pm2_5 = EXCLUDED.pm2_5,
			pm10 = EXCLUDED.pm10,
			nh3 = EXCLUDED.nh3,
			aqi = EXCLUDED.aqi,
			aqi_category = EXCLUDED.aqi_category
	`

	_, err := r.pool.Exec(ctx, query,
		record.City,
		record.RecordedAt,
		record.CO,
		record.NO,
		record.NO2,
		record.O3,
		record.SO2,
		record.PM25,
		record.PM10,
		record.NH3,
		record.AQI,
		record.AQICategory,
		record.CreatedAt,
	)
	if err != nil {
		return &models.StorageError{Op: "upsert air quality", Err: err}
	}
	return nil
}

func (r *PostgresRepository) WeatherForDay(ctx context.Context, city string, day time.Time) ([]models.WeatherRecord, error) {
	start, end := dayBounds(day)

	query := `
		SELECT city, recorded_at, latitude, longitude, temperature, feels_like,
			humidity, pressure, wind_speed, wind_deg, clouds_percent,
			sunrise, sunset, heat_index, day_length_seconds, temp_category, created_at
		FROM weather_measurements
		WHERE city = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at ASC
	`

	rows, err := r.pool.Query(ctx, query, city, start, end)
	if err != nil {
		return nil, &models.StorageError{Op: "query weather", Err: err}
	}
	defer rows.Close()

	var results []models.WeatherRecord
	for rows.Next() {
		var record models.WeatherRecord
		err := rows.Scan(
			&record.City,
			&record.RecordedAt,
			&record.Latitude,
			&record.Longitude,
			&record.Temperature,
			&record.FeelsLike,
			&record.Humidity,
			&record.Pressure,
			&record.WindSpeed,
			&record.WindDeg,
			&record.CloudsPercent,
			&record.Sunrise,
			&record.Sunset,
			&record.HeatIndex,
			&record.DayLengthSeconds,
			&record.TempCategory,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, &models.StorageError{Op: "scan weather", Err: err}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "query weather", Err: err}
	}

	return results, nil
}

func (r *PostgresRepository) AirQualityForDay(ctx context.Context, city string, day time.Time) ([]models.AirQualityRecord, error) {
	start, end := dayBounds(day)

	query := `
		SELECT city, recorded_at, co, no, no2, o3, so2, pm2_5, pm10, nh3,
			aqi, aqi_category, created_at
		FROM air_quality_measurements
		WHERE city = $1 AND recorded_at >= $2 AND recorded_at < $3
		ORDER BY recorded_at ASC
	`

	rows, err := r.pool.Query(ctx, query, city, start, end)
	if err != nil {
		return nil, &models.StorageError{Op: "query air quality", Err: err}
	}
	defer rows.Close()

	var results []models.AirQualityRecord
	for rows.Next() {
		var record models.AirQualityRecord
		err := rows.Scan(
			&record.City,
			&record.RecordedAt,
			&record.CO,
			&record.NO,
			&record.NO2,
			&record.O3,
			&record.SO2,
			&record.PM25,
			&record.PM10,
			&record.NH3,
			&record.AQI,
			&record.AQICategory,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, &models.StorageError{Op: "scan air quality", Err: err}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "query air quality", Err: err}
	}

	return results, nil
}

func (r *PostgresRepository) UpsertDailyStat(ctx context.Context, stat *models.DailyStat) error {
	query := `
		INSERT INTO city_daily_stats (
			id, city, date, avg_temperature, max_temperature, min_temperature,
			avg_humidity, avg_aqi, dominant_category, sample_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (city, date) DO UPDATE SET
			avg_temperature = EXCLUDED.avg_temperature,
			max_temperature = EXCLUDED.max_temperature,
			min_temperature = EXCLUDED.min_temperature,
			avg_humidity = EXCLUDED.avg_humidity,
			avg_aqi = EXCLUDED.avg_aqi,
			dominant_category = EXCLUDED.dominant_category,
			sample_count = EXCLUDED.sample_count,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		stat.ID,
		stat.City,
		stat.Date,
		stat.AvgTemperature,
		stat.MaxTemperature,
		stat.MinTemperature,
		stat.AvgHumidity,
		stat.AvgAQI,
		stat.DominantCategory,
		stat.SampleCount,
		stat.CreatedAt,
		stat.UpdatedAt,
	)
	if err != nil {
		return &models.StorageError{Op: "upsert daily stat", Err: err}
	}
	return nil
}

func (r *PostgresRepository) DailyStat(ctx context.Context, city string, day time.Time) (*models.DailyStat, error) {
	start, _ := dayBounds(day)

	query := `
		SELECT id, city, date, avg_temperature, max_temperature, min_temperature,
			avg_humidity, avg_aqi, dominant_category, sample_count, created_at, updated_at
		FROM city_daily_stats
		WHERE city = $1 AND date = $2
	`

	var stat models.DailyStat
	err := r.pool.QueryRow(ctx, query, city, start).Scan(
		&stat.ID,
		&stat.City,
		&stat.Date,
		&stat.AvgTemperature,
		&stat.MaxTemperature,
		&stat.MinTemperature,
		&stat.AvgHumidity,
		&stat.AvgAQI,
		&stat.DominantCategory,
		&stat.SampleCount,
		&stat.CreatedAt,
		&stat.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, &models.StorageError{Op: "get daily stat", Err: err}
	}

	return &stat, nil
}

func (r *PostgresRepository) HealthCheck(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return &models.StorageError{Op: "ping", Err: err}
	}
	return nil
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
