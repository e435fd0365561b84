package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Model artifact defaults shared with cmd/trainer
const (
	DefaultModelDir     = "models"
	DefaultModelName    = "mlb_predictor"
	DefaultModelVersion = "1.0"
)

type Config struct {
	// Server
	Port int    `validate:"gt=0,lt=65536"`
	Env  string `validate:"oneof=development staging production"`

	// CORS
	AllowedOrigins []string

	// Database URLs
	PostgresURL string `validate:"required,url"`
	RedisURL    string `validate:"required,url"`
	// ClickHouseURL is optional; the prediction audit trail is disabled without it
	ClickHouseURL string `validate:"omitempty,url"`

	// Audit worker pool
	WorkerCount   int           `validate:"gt=0"`
	QueueSize     int           `validate:"gt=0"`
	BatchSize     int           `validate:"gt=0"`
	FlushInterval time.Duration `validate:"gt=0"`

	// Analytics
	RollingWindow    int `validate:"gt=0"`
	HeadToHeadWindow int `validate:"gt=0"`

	// Model
	ModelDir        string  `validate:"required"`
	ModelName       string  `validate:"required"`
	ModelVersion    string  `validate:"required"`
	ModelType       string  `validate:"required"`
	MLMinConfidence float64 `validate:"gt=0.5,lte=1"`

	// Caching and trends
	PredictionCacheTTL   time.Duration `validate:"gte=0"`
	TrendRefreshSchedule string        `validate:"required"`
	TrendTeamCount       int           `validate:"gt=0"`
	TrendLookback        time.Duration `validate:"gt=0"`
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  GetEnv("ENV", "development"),

		ClickHouseURL: GetEnv("CLICKHOUSE_URL", ""),

		WorkerCount:   getEnvInt("WORKER_COUNT", 2),
		QueueSize:     getEnvInt("QUEUE_SIZE", 10000),
		BatchSize:     getEnvInt("BATCH_SIZE", 500),
		FlushInterval: getEnvDuration("FLUSH_INTERVAL", 1*time.Second),

		RollingWindow:    getEnvInt("ROLLING_WINDOW", 10),
		HeadToHeadWindow: getEnvInt("HEAD_TO_HEAD_WINDOW", 5),

		ModelDir:        GetEnv("MODEL_DIR", DefaultModelDir),
		ModelName:       GetEnv("MODEL_NAME", DefaultModelName),
		ModelVersion:    GetEnv("MODEL_VERSION", DefaultModelVersion),
		ModelType:       GetEnv("MODEL_TYPE", "logistic_regression"),
		MLMinConfidence: getEnvFloat("ML_MIN_CONFIDENCE", 0.55),

		PredictionCacheTTL:   getEnvDuration("PREDICTION_CACHE_TTL", 10*time.Minute),
		TrendRefreshSchedule: GetEnv("TREND_REFRESH_SCHEDULE", "0 */6 * * *"),
		TrendTeamCount:       getEnvInt("TREND_TEAM_COUNT", 5),
		TrendLookback:        getEnvDuration("TREND_LOOKBACK", 45*24*time.Hour),
	}

	// CORS
	origins := GetEnv("ALLOWED_ORIGINS", "http://localhost:3000")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.PostgresURL, err = getEnvRequired("POSTGRES_URL"); err != nil {
		return nil, err
	}
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// IsDevelopment reports whether verbose development logging should be used
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// GetEnv returns the variable or fallback when it is unset or empty
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
