package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *cfg)
}

func TestLoadFile_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  port: "9000"
  rate-limit-per-second: 5
upstream:
  restcountries-url: http://stub:8888/v3.1
  timeout: 3s
observability:
  metrics-enabled: false
logging:
  format: json
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 5, cfg.Server.RateLimitPerSecond)
	assert.Equal(t, 40, cfg.Server.RateLimitBurst)
	assert.Equal(t, "http://stub:8888/v3.1", cfg.Upstream.RestCountriesURL)
	assert.Equal(t, "https://api.sunrise-sunset.org", cfg.Upstream.SunriseSunsetURL)
	assert.Equal(t, 3*time.Second, cfg.Upstream.Timeout)
	assert.False(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, -33.9759724, cfg.Reference.Latitude)
}

func TestLoadFile_EnvironmentWins(t *testing.T) {
	path := writeFile(t, "server:\n  port: \"9000\"\n")
	t.Setenv("PORT", "7000")
	t.Setenv("UPSTREAM_TIMEOUT", "750ms")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("RATE_LIMIT_BURST", "3")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.Upstream.Timeout)
	assert.False(t, cfg.Observability.MetricsEnabled)
	assert.Equal(t, 3, cfg.Server.RateLimitBurst)
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "server: [unclosed"))
		assert.Error(t, err)
	})
	t.Run("malformed env duration", func(t *testing.T) {
		t.Setenv("UPSTREAM_TIMEOUT", "soon")
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "UPSTREAM_TIMEOUT")
	})
	t.Run("unknown log format", func(t *testing.T) {
		_, err := LoadFile(writeFile(t, "logging:\n  format: xml\n"))
		assert.ErrorContains(t, err, "log format")
	})
	t.Run("negative rate limit", func(t *testing.T) {
		t.Setenv("RATE_LIMIT_PER_SECOND", "-1")
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
