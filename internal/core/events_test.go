package core

import (
	"errors"
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPullRequestEvent(action string) *github.PullRequestEvent {
	return &github.PullRequestEvent{
		Action: github.Ptr(action),
		PullRequest: &github.PullRequest{
			Number:  github.Ptr(42),
			Title:   github.Ptr("Add retry logic"),
			HTMLURL: github.Ptr("https://github.com/acme/widgets/pull/42"),
			Head: &github.PullRequestBranch{
				SHA: github.Ptr("abc123def456"),
			},
		},
		Repo: &github.Repository{
			Name:     github.Ptr("widgets"),
			FullName: github.Ptr("acme/widgets"),
			Owner: &github.User{
				Login: github.Ptr("acme"),
				ID:    github.Ptr(int64(9001)),
			},
		},
	}
}

func TestEventFromPullRequest(t *testing.T) {
	t.Run("opened action produces a complete event", func(t *testing.T) {
		event, err := EventFromPullRequest(validPullRequestEvent("opened"))
		require.NoError(t, err)

		assert.Equal(t, "acme", event.RepoOwner)
		assert.Equal(t, "widgets", event.RepoName)
		assert.Equal(t, "acme/widgets", event.RepoFullName)
		assert.Equal(t, "9001", event.OwnerAccountID)
		assert.Equal(t, 42, event.PRNumber)
		assert.Equal(t, "Add retry logic", event.PRTitle)
		assert.Equal(t, "abc123def456", event.HeadSHA)
		assert.Equal(t, "opened", event.Action)
	})

	t.Run("synchronize action triggers too", func(t *testing.T) {
		event, err := EventFromPullRequest(validPullRequestEvent("synchronize"))
		require.NoError(t, err)
		assert.Equal(t, "synchronize", event.Action)
	})

	t.Run("non-triggering actions are ignored", func(t *testing.T) {
		for _, action := range []string{"closed", "edited", "labeled", "reopened", ""} {
			_, err := EventFromPullRequest(validPullRequestEvent(action))
			assert.ErrorIs(t, err, ErrIgnoredAction, "action %q", action)
		}
	})

	t.Run("missing fields are malformed", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(e *github.PullRequestEvent)
		}{
			{"no pull request", func(e *github.PullRequestEvent) { e.PullRequest = nil }},
			{"no repository", func(e *github.PullRequestEvent) { e.Repo = nil }},
			{"no owner", func(e *github.PullRequestEvent) { e.Repo.Owner = nil }},
			{"owner without ID", func(e *github.PullRequestEvent) { e.Repo.Owner.ID = nil }},
			{"no PR number", func(e *github.PullRequestEvent) { e.PullRequest.Number = nil }},
			{"no head SHA", func(e *github.PullRequestEvent) { e.PullRequest.Head = nil }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				e := validPullRequestEvent("opened")
				tt.mutate(e)

				_, err := EventFromPullRequest(e)
				assert.ErrorIs(t, err, ErrMalformedPayload)
				assert.False(t, errors.Is(err, ErrIgnoredAction))
			})
		}
	})
}
