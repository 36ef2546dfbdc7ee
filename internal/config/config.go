package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	OpenWeather OpenWeatherConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Minio       MinioConfig
	Scheduler   SchedulerConfig
	API         APIConfig
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	LogLevel        string        `mapstructure:"log_level"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// City is one tracked location. Coordinates are configured directly; the
// provider is queried by lat/lon.
type City struct {
	Name      string  `mapstructure:"name"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

type OpenWeatherConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Cities         []City        `mapstructure:"cities"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RequestDelay   time.Duration `mapstructure:"request_delay"`
	MaxRetries     int           `mapstructure:"max_retries"`
}

type KafkaConfig struct {
	Broker       string        `mapstructure:"broker"`
	Topic        string        `mapstructure:"topic"`
	GroupID      string        `mapstructure:"group_id"`
	RequiredAcks int           `mapstructure:"required_acks"`
	MaxRetries   int           `mapstructure:"max_retries"`
	BatchSize    int           `mapstructure:"batch_size"`
	FlushTimeout time.Duration `mapstructure:"flush_timeout"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	StatTTL  time.Duration `mapstructure:"stat_ttl"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type SchedulerConfig struct {
	ExtractInterval time.Duration `mapstructure:"extract_interval"`
	TaskTimeout     time.Duration `mapstructure:"task_timeout"`
}

type APIConfig struct {
	BasePath string `mapstructure:"base_path"`
}

func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/weather-etl/")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "weather-etl")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.shutdown_timeout", "30s")

	v.SetDefault("openweather.base_url", "https://api.openweathermap.org/data/2.5")
	v.SetDefault("openweather.request_timeout", "10s")
	v.SetDefault("openweather.request_delay", "1s")
	v.SetDefault("openweather.max_retries", 3)

	v.SetDefault("kafka.broker", "kafka:9093")
	v.SetDefault("kafka.topic", "weather-snapshots-raw")
	v.SetDefault("kafka.group_id", "weather-loader-group")
	v.SetDefault("kafka.required_acks", 1)
	v.SetDefault("kafka.max_retries", 3)
	v.SetDefault("kafka.batch_size", 50)
	v.SetDefault("kafka.flush_timeout", "10s")

	v.SetDefault("postgres.host", "postgres")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "weather_user")
	v.SetDefault("postgres.password", "weather_pass")
	v.SetDefault("postgres.database", "weather_db")
	v.SetDefault("postgres.ssl_mode", "disable")

	v.SetDefault("redis.host", "redis")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stat_ttl", "10m")

	v.SetDefault("minio.endpoint", "minio:9000")
	v.SetDefault("minio.access_key", "minioadmin")
	v.SetDefault("minio.secret_key", "minioadmin")
	v.SetDefault("minio.bucket", "weather-reports")
	v.SetDefault("minio.use_ssl", false)

	v.SetDefault("scheduler.extract_interval", "1h")
	v.SetDefault("scheduler.task_timeout", "10m")

	v.SetDefault("api.base_path", "/api/v1")
}

func validate(cfg *Config) error {
	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		return fmt.Errorf("app.port must be a valid port, got %d", cfg.App.Port)
	}
	if cfg.Scheduler.ExtractInterval <= 0 {
		return fmt.Errorf("scheduler.extract_interval must be positive")
	}
	if cfg.Kafka.BatchSize <= 0 {
		return fmt.Errorf("kafka.batch_size must be positive")
	}
	for i, city := range cfg.OpenWeather.Cities {
		if city.Name == "" {
			return fmt.Errorf("openweather.cities[%d].name must not be empty", i)
		}
		if city.Latitude < -90 || city.Latitude > 90 {
			return fmt.Errorf("openweather.cities[%d]: latitude out of range", i)
		}
		if city.Longitude < -180 || city.Longitude > 180 {
			return fmt.Errorf("openweather.cities[%d]: longitude out of range", i)
		}
	}
	return nil
}
