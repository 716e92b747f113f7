package wire

import (
	"log/slog"

	"github.com/avoronov/review-relay/internal/config"
	"github.com/avoronov/review-relay/internal/github"
	"github.com/avoronov/review-relay/internal/llm"
	"github.com/avoronov/review-relay/internal/logger"
)

func provideSlogLogger(cfg *config.Config) *slog.Logger {
	return logger.NewLogger(cfg.Logging, nil)
}

func provideProvider(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(cfg.LLMProvider, cfg.GeneratorModelName, cfg.GeminiAPIKey, cfg.OllamaHost, cfg.LLMTimeout)
}

func provideGenerator(cfg *config.Config, provider llm.Provider, prompts *llm.PromptManager, slogLogger *slog.Logger) llm.Generator {
	return llm.NewGenerator(provider, prompts, cfg.LLMTimeout, slogLogger)
}

func provideClientFactory() github.ClientFactory {
	return github.NewTokenClient
}
