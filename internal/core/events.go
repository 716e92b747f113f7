// Package core defines the essential interfaces and data structures that form
// the backbone of the application. These components are designed to be
// abstract, allowing for flexible and decoupled implementations of the
// application's logic.
package core

import (
	"fmt"
	"strconv"

	"github.com/google/go-github/v73/github"
)

// ReviewEvent is a simplified, internal view of one pull_request webhook
// delivery. It is constructed from an inbound request, consumed while that
// delivery is handled, and discarded afterwards.
type ReviewEvent struct {
	RepoOwner    string
	RepoName     string
	RepoFullName string

	// OwnerAccountID is the stable numeric ID of the base repository's
	// owner in string form. Credentials are looked up under this key.
	OwnerAccountID string

	PRNumber  int
	PRTitle   string
	PRHTMLURL string
	HeadSHA   string
	Action    string
}

// triggeringActions are the pull_request actions that start a review.
var triggeringActions = map[string]struct{}{
	"opened":      {},
	"synchronize": {},
}

// EventFromPullRequest transforms a raw GitHub PullRequestEvent into the
// application's internal ReviewEvent representation. It acts as an
// anti-corruption layer: non-triggering actions are reported via
// ErrIgnoredAction, and payloads missing required fields via
// ErrMalformedPayload, before anything downstream runs.
func EventFromPullRequest(event *github.PullRequestEvent) (*ReviewEvent, error) {
	action := event.GetAction()
	if _, ok := triggeringActions[action]; !ok {
		return nil, fmt.Errorf("%w: action %q", ErrIgnoredAction, action)
	}

	pr := event.GetPullRequest()
	if pr == nil {
		return nil, fmt.Errorf("%w: missing pull_request object", ErrMalformedPayload)
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetFullName() == "" {
		return nil, fmt.Errorf("%w: missing base repository", ErrMalformedPayload)
	}
	owner := repo.GetOwner()
	if owner == nil || owner.GetLogin() == "" || owner.GetID() == 0 {
		return nil, fmt.Errorf("%w: missing repository owner", ErrMalformedPayload)
	}

	prNumber := pr.GetNumber()
	if prNumber <= 0 {
		return nil, fmt.Errorf("%w: invalid pull request number %d", ErrMalformedPayload, prNumber)
	}

	headSHA := pr.GetHead().GetSHA()
	if headSHA == "" {
		return nil, fmt.Errorf("%w: missing head SHA", ErrMalformedPayload)
	}

	return &ReviewEvent{
		RepoOwner:      owner.GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		OwnerAccountID: strconv.FormatInt(owner.GetID(), 10),
		PRNumber:       prNumber,
		PRTitle:        pr.GetTitle(),
		PRHTMLURL:      pr.GetHTMLURL(),
		HeadSHA:        headSHA,
		Action:         action,
	}, nil
}
