package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/avoronov/review-relay/internal/core"
)

// dispatcher implements core.JobDispatcher. Dispatch runs the job in the
// caller's goroutine so the webhook response can reflect the pipeline
// outcome; a semaphore bounds how many reviews run at once across concurrent
// deliveries without ever serializing unrelated ones.
type dispatcher struct {
	job    core.Job
	slots  chan struct{}
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher allowing up to maxConcurrent reviews at
// a time. A value of 0 or less defaults to 1.
func NewDispatcher(job core.Job, maxConcurrent int, logger *slog.Logger) core.JobDispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &dispatcher{
		job:    job,
		slots:  make(chan struct{}, maxConcurrent),
		logger: logger,
	}
}

// Dispatch acquires a review slot, runs the job, and returns its error.
// Waiting for a slot respects the request context, so a delivery stuck
// behind long-running reviews fails instead of hanging past its deadline.
func (d *dispatcher) Dispatch(ctx context.Context, event *core.ReviewEvent) error {
	select {
	case d.slots <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("waiting for review slot: %w", ctx.Err())
	}
	defer func() { <-d.slots }()

	d.logger.Info("processing review job", "repo", event.RepoFullName, "pr", event.PRNumber)

	if err := d.job.Run(ctx, event); err != nil {
		if errors.Is(err, core.ErrAlreadyReviewed) {
			return err
		}
		d.logger.Error("review job failed",
			"repo", event.RepoFullName,
			"pr", event.PRNumber,
			"error", err,
		)
		return err
	}
	return nil
}
