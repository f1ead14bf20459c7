// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces every environment variable, e.g. WUQA_HILLTOP_BASE_URL.
const envPrefix = "WUQA"

// Config represents the complete application configuration.
type Config struct {
	Hilltop   HilltopConfig   `envconfig:"HILLTOP"`
	Warehouse WarehouseConfig `envconfig:"WAREHOUSE"`
	Pipeline  PipelineConfig  `envconfig:"PIPELINE"`
	Output    OutputConfig    `envconfig:"OUTPUT"`
	Logging   LoggingConfig   `envconfig:"LOGGING"`
}

// HilltopConfig contains the time-series server connection settings.
type HilltopConfig struct {
	BaseURL string        `envconfig:"BASE_URL" default:"http://wateruse.ecan.govt.nz" validate:"required,url"`
	HTS     string        `envconfig:"HTS" default:"WaterUse.hts" validate:"required"`
	Timeout time.Duration `envconfig:"TIMEOUT" default:"2m"`
}

// WarehouseConfig contains the consent warehouse connection settings.
// An empty DSN disables consent lookups.
type WarehouseConfig struct {
	DSN string `envconfig:"DSN"`
}

// PipelineConfig contains the analysis tuning knobs.
type PipelineConfig struct {
	RollingWindow          int `envconfig:"ROLLING_WINDOW" default:"30" validate:"min=1"`
	MinRollingObservations int `envconfig:"MIN_ROLLING_OBSERVATIONS" validate:"min=0"`
}

// OutputConfig contains file output settings.
type OutputConfig struct {
	Dir string `envconfig:"DIR" default:"output" validate:"required"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}

// Load reads configuration from a .env file (when present) and the
// environment, then validates the result.
func Load() (*Config, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration against the struct constraints.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Logger builds a slog logger matching the logging configuration.
func (c *Config) Logger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if c.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
