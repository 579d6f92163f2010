package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, EnvDev, cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30, cfg.RateLimitPerMin)
	assert.Equal(t, 2048, cfg.MaxURLLength)
	assert.Equal(t, 2000, cfg.CacheMaxSize)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 8*time.Second, cfg.NetworkTimeout)
	assert.Equal(t, 10*time.Second, cfg.WhoisTimeout)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("NETWORK_TIMEOUT", "2.5")
	t.Setenv("BACKEND_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("TRUSTED_PROXY_COUNT", "2")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Port)
	assert.Equal(t, 5, cfg.RateLimitPerMin)
	assert.Equal(t, 2500*time.Millisecond, cfg.NetworkTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, 2, cfg.TrustedProxyCount)
}

func TestYAMLFileUnderEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9100\nlog_level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Environment still wins over the file.
	t.Setenv("PORT", "9200")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Port)
}

func TestProductionRequiresAPIKey(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("BACKEND_CORS_ORIGINS", "https://app.example")

	_, err := Load("")
	assert.ErrorContains(t, err, "API_KEY")

	t.Setenv("API_KEY", "sekret")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestProductionRejectsWildcardCORS(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("API_KEY", "sekret")

	_, err := Load("")
	assert.ErrorContains(t, err, "CORS")
}

func TestUnknownEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")
	_, err := Load("")
	assert.Error(t, err)
}
