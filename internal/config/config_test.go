package config

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://wateruse.ecan.govt.nz", cfg.Hilltop.BaseURL)
	assert.Equal(t, "WaterUse.hts", cfg.Hilltop.HTS)
	assert.Equal(t, 2*time.Minute, cfg.Hilltop.Timeout)
	assert.Empty(t, cfg.Warehouse.DSN)
	assert.Equal(t, 30, cfg.Pipeline.RollingWindow)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("WUQA_HILLTOP_BASE_URL", "http://hilltop.example.org")
	t.Setenv("WUQA_HILLTOP_TIMEOUT", "30s")
	t.Setenv("WUQA_PIPELINE_ROLLING_WINDOW", "7")
	t.Setenv("WUQA_LOGGING_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://hilltop.example.org", cfg.Hilltop.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Hilltop.Timeout)
	assert.Equal(t, 7, cfg.Pipeline.RollingWindow)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "malformed base URL", key: "WUQA_HILLTOP_BASE_URL", value: "not a url"},
		{name: "unknown log level", key: "WUQA_LOGGING_LEVEL", value: "verbose"},
		{name: "unknown log format", key: "WUQA_LOGGING_FORMAT", value: "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.ErrorContains(t, err, "invalid config")
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "json"

	logger := cfg.Logger()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
