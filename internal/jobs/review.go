// Package jobs defines the review pipeline executed for webhook deliveries.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avoronov/review-relay/internal/config"
	"github.com/avoronov/review-relay/internal/core"
	"github.com/avoronov/review-relay/internal/github"
	"github.com/avoronov/review-relay/internal/llm"
	"github.com/avoronov/review-relay/internal/storage"
)

// ReviewJob runs the review pipeline for one delivery: credential lookup,
// dedup check, diff fetch, review generation, comment post, review record.
// Stages run strictly in sequence; the first failure halts the pipeline.
type ReviewJob struct {
	cfg       *config.Config
	store     storage.Store
	generator llm.Generator
	newClient github.ClientFactory
	logger    *slog.Logger
}

// NewReviewJob creates a ReviewJob. The client factory builds a GitHub client
// per delivery from the stored credential.
func NewReviewJob(cfg *config.Config, store storage.Store, generator llm.Generator, newClient github.ClientFactory, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if store == nil {
		panic("store cannot be nil")
	}
	if generator == nil {
		panic("generator cannot be nil")
	}
	if newClient == nil {
		newClient = github.NewTokenClient
	}
	return &ReviewJob{
		cfg:       cfg,
		store:     store,
		generator: generator,
		newClient: newClient,
		logger:    logger,
	}
}

// Run executes the review pipeline for a single delivery.
func (j *ReviewJob) Run(ctx context.Context, event *core.ReviewEvent) error {
	if err := j.validateInputs(ctx, event); err != nil {
		j.logger.Error("input validation failed", "error", err)
		return fmt.Errorf("%w: %v", core.ErrMalformedPayload, err)
	}

	j.logger.Info("starting review", "repo", event.RepoFullName, "pr", event.PRNumber, "action", event.Action)

	cred, err := j.lookupCredential(ctx, event)
	if err != nil {
		return err
	}

	reviewed, err := j.store.HasReviewForCommit(ctx, event.RepoFullName, event.PRNumber, event.HeadSHA)
	if err != nil {
		return fmt.Errorf("failed to check for existing review: %w", err)
	}
	if reviewed {
		j.logger.Info("skipping already-reviewed commit",
			"repo", event.RepoFullName, "pr", event.PRNumber, "sha", event.HeadSHA)
		return fmt.Errorf("%w: %s#%d@%s", core.ErrAlreadyReviewed, event.RepoFullName, event.PRNumber, event.HeadSHA)
	}

	ghClient := j.newClient(ctx, cred.AccessToken, j.logger)

	repoCfg := j.loadRepoConfig(ctx, ghClient, event)
	if !repoCfg.IsEnabled() {
		j.logger.Info("reviews disabled by repository config", "repo", event.RepoFullName)
		return nil
	}

	fetchCtx, cancelFetch := context.WithTimeout(ctx, j.cfg.GitHubTimeout)
	defer cancelFetch()
	diff, err := ghClient.GetPullRequestDiff(fetchCtx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch diff for %s#%d: %w", event.RepoFullName, event.PRNumber, err)
	}

	diff = llm.TruncateDiff(diff, repoCfg.MaxDiffBytes)

	review, err := j.generator.GenerateReview(ctx, &llm.ReviewData{
		Diff:       diff,
		Guidelines: repoCfg.Guidelines,
	})
	if err != nil {
		return fmt.Errorf("failed to generate review for %s#%d: %w", event.RepoFullName, event.PRNumber, err)
	}

	postCtx, cancelPost := context.WithTimeout(ctx, j.cfg.GitHubTimeout)
	defer cancelPost()
	if err := ghClient.CreateComment(postCtx, event.RepoOwner, event.RepoName, event.PRNumber, review); err != nil {
		return fmt.Errorf("failed to post review comment on %s#%d: %w", event.RepoFullName, event.PRNumber, err)
	}

	if err := j.store.SaveReview(ctx, &core.Review{
		RepoFullName:  event.RepoFullName,
		PRNumber:      event.PRNumber,
		HeadSHA:       event.HeadSHA,
		ReviewContent: review,
	}); err != nil {
		// The comment is already posted; a lost record only means a
		// redelivery for this commit could post again.
		j.logger.Warn("failed to record posted review",
			"repo", event.RepoFullName, "pr", event.PRNumber, "error", err)
	}

	j.logger.Info("review posted", "repo", event.RepoFullName, "pr", event.PRNumber, "sha", event.HeadSHA)
	return nil
}

// lookupCredential resolves the credential for the repository owner, with an
// explicit single-tenant fallback when DEFAULT_ACCOUNT_ID is configured.
func (j *ReviewJob) lookupCredential(ctx context.Context, event *core.ReviewEvent) (*core.Credential, error) {
	cred, err := j.store.GetCredential(ctx, event.OwnerAccountID)
	if err == nil {
		return cred, nil
	}
	if !errors.Is(err, core.ErrNoCredential) {
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}

	if j.cfg.DefaultAccountID != "" && j.cfg.DefaultAccountID != event.OwnerAccountID {
		j.logger.Debug("falling back to default account credential",
			"owner_account", event.OwnerAccountID, "default_account", j.cfg.DefaultAccountID)
		if cred, fbErr := j.store.GetCredential(ctx, j.cfg.DefaultAccountID); fbErr == nil {
			return cred, nil
		}
	}

	j.logger.Error("no credential for repository owner",
		"repo", event.RepoFullName, "owner", event.RepoOwner, "account", event.OwnerAccountID)
	return nil, err
}

// loadRepoConfig fetches .review-relay.yml at the PR head. A missing or
// unparsable file falls back to defaults.
func (j *ReviewJob) loadRepoConfig(ctx context.Context, ghClient github.Client, event *core.ReviewEvent) *core.RepoConfig {
	cfgCtx, cancel := context.WithTimeout(ctx, j.cfg.GitHubTimeout)
	defer cancel()

	data, err := ghClient.GetRepoFile(cfgCtx, event.RepoOwner, event.RepoName, config.RepoConfigFileName, event.HeadSHA)
	if err != nil {
		if !errors.Is(err, github.ErrFileNotFound) {
			j.logger.Warn("failed to fetch repo config, using defaults", "repo", event.RepoFullName, "error", err)
		}
		return core.DefaultRepoConfig()
	}

	repoCfg, err := config.ParseRepoConfig(data)
	if err != nil {
		j.logger.Warn("invalid repo config, using defaults", "repo", event.RepoFullName, "error", err)
		return core.DefaultRepoConfig()
	}
	return repoCfg
}

// validateInputs ensures the event carries everything the pipeline needs.
func (j *ReviewJob) validateInputs(ctx context.Context, event *core.ReviewEvent) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.RepoOwner == "" {
		return fmt.Errorf("repository owner cannot be empty")
	}
	if event.RepoName == "" {
		return fmt.Errorf("repository name cannot be empty")
	}
	if event.RepoFullName == "" {
		return fmt.Errorf("repository full name cannot be empty")
	}
	if event.OwnerAccountID == "" {
		return fmt.Errorf("owner account identifier cannot be empty")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.HeadSHA == "" {
		return fmt.Errorf("head SHA cannot be empty")
	}
	return nil
}
