package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config represents the complete application configuration, loaded
// from the environment (and an optional .env file) under the WEATHER
// prefix. Run-scoped knobs (city file, city cap, horizon) come from
// CLI flags and override the configured defaults.
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DB"`
	Fetch    FetchConfig    `envconfig:"FETCH"`
	Analysis AnalysisConfig `envconfig:"ANALYSIS"`
	Logging  LoggingConfig  `envconfig:"LOG"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host         string        `envconfig:"HOST" default:"0.0.0.0"`
	Port         int           `envconfig:"PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`
}

// DatabaseConfig contains PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"5432"`
	User            string        `envconfig:"USER" default:"weather"`
	Password        string        `envconfig:"PASSWORD" default:"weather"`
	Database        string        `envconfig:"NAME" default:"weather_analyzer"`
	SSLMode         string        `envconfig:"SSLMODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"5m"`
	ConnMaxIdleTime time.Duration `envconfig:"CONN_MAX_IDLE_TIME" default:"1m"`
}

// FetchConfig controls the Open-Meteo archive client.
type FetchConfig struct {
	BaseURL       string        `envconfig:"BASE_URL" default:"https://archive-api.open-meteo.com/v1/archive"`
	StartDate     string        `envconfig:"START_DATE" default:"2010-01-01"`
	EndDate       string        `envconfig:"END_DATE" default:"2024-02-20"`
	Timeout       time.Duration `envconfig:"TIMEOUT" default:"60s"`
	MaxRetries    int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryInterval time.Duration `envconfig:"RETRY_INTERVAL" default:"3s"`
}

// AnalysisConfig holds the default analysis knobs.
type AnalysisConfig struct {
	AnomalyThreshold float64 `envconfig:"ANOMALY_THRESHOLD" default:"3"`
	DaysAhead        int     `envconfig:"DAYS_AHEAD" default:"30"`
	TotalCities      int     `envconfig:"TOTAL_CITIES" default:"10"`
	OutputDir        string  `envconfig:"OUTPUT_DIR" default:"reports"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LEVEL" default:"info"`
}

// LoadConfig loads configuration from a .env file (when present) and
// the environment.
func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("weather", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration invariants at startup.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Analysis.AnomalyThreshold <= 0 {
		return fmt.Errorf("anomaly threshold must be positive, got %v", c.Analysis.AnomalyThreshold)
	}
	if c.Analysis.DaysAhead < 0 {
		return fmt.Errorf("forecast horizon must not be negative, got %d", c.Analysis.DaysAhead)
	}
	if c.Analysis.TotalCities <= 0 {
		return fmt.Errorf("total cities must be positive, got %d", c.Analysis.TotalCities)
	}
	if _, err := time.Parse("2006-01-02", c.Fetch.StartDate); err != nil {
		return fmt.Errorf("invalid fetch start date %q: %w", c.Fetch.StartDate, err)
	}
	if _, err := time.Parse("2006-01-02", c.Fetch.EndDate); err != nil {
		return fmt.Errorf("invalid fetch end date %q: %w", c.Fetch.EndDate, err)
	}
	return nil
}
