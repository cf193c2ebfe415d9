package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
api:
  port: 9090
yahoo_finance:
  timeout: 5s
forecast:
  uncertainty_samples: 200
  holidays:
    - name: new_year
      dates: ["2024-01-01"]
      upper_window: 1
cache:
  backend: redis
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, 5*time.Second, cfg.YahooFinance.Timeout)
	assert.Equal(t, 200, cfg.Forecast.UncertaintySamples)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	require.Len(t, cfg.Forecast.Holidays, 1)
	assert.Equal(t, "new_year", cfg.Forecast.Holidays[0].Name)
	assert.Equal(t, 1, cfg.Forecast.Holidays[0].UpperWindow)

	// untouched keys keep their defaults
	assert.Equal(t, "2012-01-01", cfg.Forecast.StartDate)
	assert.Equal(t, 0.8, cfg.Forecast.IntervalWidth)
	assert.Equal(t, 60, cfg.YahooFinance.MaxRequestPerMinute)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("FORECAST_DEFAULT_YEARS", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, 3, cfg.Forecast.DefaultYears)
	assert.Equal(t, 25, cfg.Forecast.NChangepoints)
}
