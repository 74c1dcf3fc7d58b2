package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.False(t, cfg.Redis.Enabled, "redis cache is opt-in")
	assert.Equal(t, 0, cfg.HTTP.MaxRetries, "requests are one-shot by default")
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), cfg.HistoryStart)
	assert.Equal(t, 24*time.Hour, cfg.FactorCacheTTL)
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HTTP_RATE_LIMIT", "2")
	t.Setenv("HTTP_MAX_RETRIES", "3")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("HISTORY_START", "2000-06-01")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.HTTP.RateLimit)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, time.Date(2000, 6, 1, 0, 0, 0, 0, time.UTC), cfg.HistoryStart)
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateNegativeRetries(t *testing.T) {
	t.Setenv("HTTP_MAX_RETRIES", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))

	t.Setenv("TEST_DURATION", "garbage")
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "100")
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))

	t.Setenv("TEST_INT", "abc")
	assert.Equal(t, 50, getEnvAsInt("TEST_INT", 50))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
}

func TestGetEnvAsDate(t *testing.T) {
	t.Setenv("TEST_DATE", "not-a-date")
	assert.Equal(t, time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC), getEnvAsDate("TEST_DATE", "1990-01-01"))
}
