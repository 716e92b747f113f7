package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/relay?sslmode=disable")
	t.Setenv("GITHUB_CLIENT_ID", "iv1.client")
	t.Setenv("GITHUB_CLIENT_SECRET", "client-secret")
	t.Setenv("GITHUB_WEBHOOK_SECRET", "hook-secret")
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("GEMINI_API_KEY", "gm-key")
}

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.ServerPort)
		assert.Equal(t, "gemini", cfg.LLMProvider)
		assert.Equal(t, "gemini-1.5-flash", cfg.GeneratorModelName)
		assert.Equal(t, "http://localhost:11434", cfg.OllamaHost)
		assert.Equal(t, 5, cfg.MaxConcurrentReviews)
		assert.Equal(t, 30*time.Second, cfg.GitHubTimeout)
		assert.Equal(t, 2*time.Minute, cfg.LLMTimeout)
		assert.Equal(t, 3*time.Minute, cfg.RequestTimeout)
		assert.Equal(t, "info", cfg.Logging.Level)
	})

	t.Run("ollama provider picks an ollama model default", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("LLM_PROVIDER", "ollama")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "llama3:latest", cfg.GeneratorModelName)
	})

	t.Run("explicit model wins over default", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GENERATOR_MODEL_NAME", "gemini-1.5-pro")

		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "gemini-1.5-pro", cfg.GeneratorModelName)
	})

	t.Run("missing database URL fails", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DATABASE_URL", "")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "DATABASE_URL")
	})

	t.Run("gemini provider requires an API key", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GEMINI_API_KEY", "")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "GEMINI_API_KEY")
	})

	t.Run("ollama provider does not require a gemini key", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GEMINI_API_KEY", "")
		t.Setenv("LLM_PROVIDER", "ollama")

		_, err := LoadConfig()
		assert.NoError(t, err)
	})
}
