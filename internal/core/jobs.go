package core

import (
	"context"
)

// JobDispatcher runs review jobs for webhook deliveries. Dispatch blocks
// until the job finishes and returns its error, so the HTTP response to the
// webhook sender can reflect the pipeline outcome. Implementations bound how
// many jobs run at once; they never serialize unrelated deliveries.
type JobDispatcher interface {
	Dispatch(ctx context.Context, event *ReviewEvent) error
}

// Job is a single executable unit of work triggered by a ReviewEvent.
type Job interface {
	Run(ctx context.Context, event *ReviewEvent) error
}
