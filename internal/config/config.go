// Package config loads the application configuration from the environment
// and an optional .env file.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/avoronov/review-relay/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	ServerPort string
	Logging    logger.Config

	DatabaseURL string

	LLMProvider        string
	GeminiAPIKey       string
	GeneratorModelName string
	OllamaHost         string

	GitHubClientID      string
	GitHubClientSecret  string
	GitHubWebhookSecret string
	OAuthRedirectURL    string
	WebhookPayloadURL   string
	SessionSecret       string

	// DefaultAccountID is an explicit single-tenant fallback: when no
	// credential exists for a delivery's repository owner, this account's
	// credential is tried instead. Empty disables the fallback.
	DefaultAccountID string

	MaxConcurrentReviews int
	GitHubTimeout        time.Duration
	LLMTimeout           time.Duration
	RequestTimeout       time.Duration
}

// LoadConfig reads configuration from environment variables and a .env file,
// sets sensible defaults, and validates required fields. Viper handles
// loading and precedence.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_OUTPUT", "stdout")
	v.SetDefault("LLM_PROVIDER", "gemini")
	v.SetDefault("OLLAMA_HOST", "http://localhost:11434")
	v.SetDefault("MAX_CONCURRENT_REVIEWS", 5)
	v.SetDefault("GITHUB_TIMEOUT", "30s")
	v.SetDefault("LLM_TIMEOUT", "2m")
	v.SetDefault("REQUEST_TIMEOUT", "3m")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// A present but unreadable .env is ignored on purpose; the
			// environment alone may carry the full configuration.
			_ = err
		}
	}

	// The generator model default depends on the provider.
	generatorModel := v.GetString("GENERATOR_MODEL_NAME")
	if generatorModel == "" {
		switch v.GetString("LLM_PROVIDER") {
		case "ollama":
			generatorModel = "llama3:latest"
		default:
			generatorModel = "gemini-1.5-flash"
		}
	}

	cfg := &Config{
		ServerPort: v.GetString("SERVER_PORT"),
		Logging: logger.Config{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
		DatabaseURL:          v.GetString("DATABASE_URL"),
		LLMProvider:          v.GetString("LLM_PROVIDER"),
		GeminiAPIKey:         v.GetString("GEMINI_API_KEY"),
		GeneratorModelName:   generatorModel,
		OllamaHost:           v.GetString("OLLAMA_HOST"),
		GitHubClientID:       v.GetString("GITHUB_CLIENT_ID"),
		GitHubClientSecret:   v.GetString("GITHUB_CLIENT_SECRET"),
		GitHubWebhookSecret:  v.GetString("GITHUB_WEBHOOK_SECRET"),
		OAuthRedirectURL:     v.GetString("OAUTH_REDIRECT_URL"),
		WebhookPayloadURL:    v.GetString("WEBHOOK_PAYLOAD_URL"),
		SessionSecret:        v.GetString("SESSION_SECRET"),
		DefaultAccountID:     v.GetString("DEFAULT_ACCOUNT_ID"),
		MaxConcurrentReviews: v.GetInt("MAX_CONCURRENT_REVIEWS"),
		GitHubTimeout:        v.GetDuration("GITHUB_TIMEOUT"),
		LLMTimeout:           v.GetDuration("LLM_TIMEOUT"),
		RequestTimeout:       v.GetDuration("REQUEST_TIMEOUT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must be set")
	}
	if c.GitHubClientID == "" || c.GitHubClientSecret == "" {
		return fmt.Errorf("GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET must be set")
	}
	if c.GitHubWebhookSecret == "" {
		return fmt.Errorf("GITHUB_WEBHOOK_SECRET must be set")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET must be set")
	}
	if c.LLMProvider == "gemini" && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY must be set for the gemini provider")
	}
	if c.MaxConcurrentReviews <= 0 {
		c.MaxConcurrentReviews = 1
	}
	return nil
}
