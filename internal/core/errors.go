package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for delivery handling. Handlers map these onto HTTP
// responses for the webhook sender.
var (
	// ErrIgnoredAction marks pull_request actions that do not trigger a
	// review. The delivery is accepted and dropped.
	ErrIgnoredAction = errors.New("action does not trigger a review")

	// ErrMalformedPayload marks deliveries missing required fields.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrNoCredential is returned when no stored credential exists for the
	// account derived from a delivery.
	ErrNoCredential = errors.New("no stored credential for account")

	// ErrAlreadyReviewed is returned when a review for the delivery's
	// (repo, PR, head SHA) key has already been posted.
	ErrAlreadyReviewed = errors.New("pull request head already reviewed")
)

// UpstreamError reports a non-success response from the source-control API.
// It carries the upstream status code and response body so failures can be
// logged and mapped without string matching.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: upstream returned %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: upstream returned %d", e.Op, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// GenerationError reports a failed model completion. Generation failures must
// not crash delivery processing, but they also must never be mistaken for
// review text, so they travel as a typed error rather than a sentinel string.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
