package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the env vars without which validation fails.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CAPTION_DATABASE_URL", "postgres://localhost:5432/captions")
	t.Setenv("CAPTION_AUTH_JWT_SECRET", "test-secret-that-is-at-least-32-chars-long")
	t.Setenv("CAPTION_CAPTION_URL", "http://localhost:11434/api/generate")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, "ollama", cfg.Caption.Provider)
	assert.Equal(t, "minicpm-v", cfg.Caption.Model)
	assert.Equal(t, 60, cfg.Caption.RequestTimeoutSeconds)
	assert.Equal(t, 2, cfg.Worker.PollIntervalSeconds)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CAPTION_SERVER_PORT", "9090")
	t.Setenv("CAPTION_SERVER_LOG_LEVEL", "debug")
	t.Setenv("CAPTION_CAPTION_MODEL", "llava")
	t.Setenv("CAPTION_WORKER_POLL_INTERVAL_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, "llava", cfg.Caption.Model)
	assert.Equal(t, 5, cfg.Worker.PollIntervalSeconds)
	assert.Equal(t, "postgres://localhost:5432/captions", cfg.Database.URL)
}

func TestLoadMissingDatabaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CAPTION_DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadShortJWTSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CAPTION_AUTH_JWT_SECRET", "too-short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadInvalidLogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CAPTION_SERVER_LOG_LEVEL", "loud")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadGeminiProviderRequiresAPIKey(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CAPTION_CAPTION_PROVIDER", "gemini")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("CAPTION_CAPTION_GEMINI_API_KEY", "fake-api-key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.Caption.Provider)
}

func TestLoadUnknownProviderRejected(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CAPTION_CAPTION_PROVIDER", "openai")

	_, err := Load()
	assert.Error(t, err)
}
