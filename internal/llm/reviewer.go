package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avoronov/review-relay/internal/core"
)

// truncationMarker is appended when a diff is cut at a repository's
// configured max_diff_bytes.
const truncationMarker = "\n\n[diff truncated]"

// ReviewData is the template payload for the code review prompt. The diff is
// embedded verbatim.
type ReviewData struct {
	Diff       string
	Guidelines []string
}

// Generator produces review text for a unified diff.
type Generator interface {
	GenerateReview(ctx context.Context, data *ReviewData) (string, error)
}

type generator struct {
	provider Provider
	prompts  *PromptManager
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGenerator creates a Generator backed by the given completion provider.
// Each generation runs under the configured timeout.
func NewGenerator(provider Provider, prompts *PromptManager, timeout time.Duration, logger *slog.Logger) Generator {
	return &generator{
		provider: provider,
		prompts:  prompts,
		timeout:  timeout,
		logger:   logger,
	}
}

// GenerateReview renders the fixed review prompt around the diff and asks the
// model for a completion. All failure modes, including an empty completion,
// come back as *core.GenerationError so a failed call can never be mistaken
// for review text.
func (g *generator) GenerateReview(ctx context.Context, data *ReviewData) (string, error) {
	prompt, err := g.prompts.Render(CodeReviewPrompt, ModelProvider(g.provider.Name()), data)
	if err != nil {
		return "", &core.GenerationError{Provider: g.provider.Name(), Err: fmt.Errorf("failed to build prompt: %w", err)}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	g.logger.Debug("requesting completion", "provider", g.provider.Name(), "prompt_chars", len(prompt))

	review, err := g.provider.Generate(ctx, prompt)
	if err != nil {
		var genErr *core.GenerationError
		if errors.As(err, &genErr) {
			return "", err
		}
		return "", &core.GenerationError{Provider: g.provider.Name(), Err: err}
	}
	if review == "" {
		return "", &core.GenerationError{Provider: g.provider.Name(), Err: fmt.Errorf("model returned an empty review")}
	}
	return review, nil
}

// TruncateDiff cuts a diff at max bytes and appends a marker. A non-positive
// max leaves the diff untouched; there is no default cap.
func TruncateDiff(diff string, max int) string {
	if max <= 0 || len(diff) <= max {
		return diff
	}
	return diff[:max] + truncationMarker
}
