// Package llm implements the generative-model side of the review pipeline:
// completion providers, prompt templates, and the review generator.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Provider is a minimal single-request completion interface over a
// generative model. No streaming.
type Provider interface {
	// Name identifies the provider ("gemini", "ollama"), used for prompt
	// selection and error reporting.
	Name() string

	// Generate asks the model for a completion of the prompt. Failures are
	// returned as *core.GenerationError.
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewProvider builds the configured completion provider. Used by both the
// server wiring and the CLI.
func NewProvider(provider, model, geminiAPIKey, ollamaHost string, timeout time.Duration) (Provider, error) {
	switch provider {
	case "gemini":
		if geminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is not set for the gemini provider")
		}
		return NewGeminiClient(geminiAPIKey, model, timeout), nil
	case "ollama":
		return NewOllamaClient(ollamaHost, model, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
