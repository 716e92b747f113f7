// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/avoronov/review-relay/internal/core"
)

// ErrHookExists is returned by CreateHook when the repository already carries
// an identical webhook. Callers usually treat this as success.
var ErrHookExists = errors.New("webhook already installed on repository")

// ErrFileNotFound is returned by GetRepoFile for missing paths.
var ErrFileNotFound = errors.New("file not found in repository")

// Client defines the GitHub API operations the application needs: the
// authenticated user's identity and repositories, pull request diffs,
// comments, and webhook installation.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	AuthenticatedUser(ctx context.Context) (*github.User, error)
	ListRepositories(ctx context.Context) ([]*github.Repository, error)
	GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
	CreateHook(ctx context.Context, owner, repo, hookURL, secret string) error
	GetRepoFile(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

// ClientFactory builds a Client bound to a bearer credential. The review job
// constructs one client per delivery from the stored token; tests inject a
// factory returning a mock.
type ClientFactory func(ctx context.Context, token string, logger *slog.Logger) Client

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewClient wraps an already-configured go-github client.
func NewClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewTokenClient creates a Client authenticated with an OAuth or personal
// access token.
func NewTokenClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &gitHubClient{client: github.NewClient(tc), logger: logger}
}

// AuthenticatedUser returns the user the client's token belongs to.
func (g *gitHubClient) AuthenticatedUser(ctx context.Context) (*github.User, error) {
	user, resp, err := g.client.Users.Get(ctx, "")
	if err != nil {
		g.logger.Error("failed to fetch authenticated user", "error", err)
		return nil, wrapUpstream("fetch authenticated user", resp, err)
	}
	return user, nil
}

// ListRepositories returns every repository visible to the authenticated
// user, following pagination.
func (g *gitHubClient) ListRepositories(ctx context.Context) ([]*github.Repository, error) {
	var all []*github.Repository
	opts := &github.RepositoryListByAuthenticatedUserOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		repos, resp, err := g.client.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			g.logger.Error("failed to list repositories", "error", err)
			return nil, wrapUpstream("list repositories", resp, err)
		}
		all = append(all, repos...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// GetPullRequestDiff retrieves the unified diff of a pull request. The raw
// request negotiates the diff media type, so the response is diff text, not
// JSON.
func (g *gitHubClient) GetPullRequestDiff(ctx context.Context, owner, repo string, number int) (string, error) {
	diff, resp, err := g.client.PullRequests.GetRaw(ctx, owner, repo, number, github.RawOptions{
		Type: github.Diff,
	})
	if err != nil {
		g.logger.Error("failed to get pull request diff", "owner", owner, "repo", repo, "pr", number, "error", err)
		return "", wrapUpstream("fetch pull request diff", resp, err)
	}
	return diff, nil
}

// CreateComment posts an issue comment on a pull request.
func (g *gitHubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &github.IssueComment{Body: github.Ptr(body)}
	_, resp, err := g.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create comment", "owner", owner, "repo", repo, "pr", number, "error", err)
		return wrapUpstream("post review comment", resp, err)
	}
	return nil
}

// CreateHook installs a pull_request webhook delivering JSON payloads signed
// with the given secret. An already-installed identical hook is reported as
// ErrHookExists.
func (g *gitHubClient) CreateHook(ctx context.Context, owner, repo, hookURL, secret string) error {
	hook := &github.Hook{
		Active: github.Ptr(true),
		Events: []string{"pull_request"},
		Config: &github.HookConfig{
			URL:         github.Ptr(hookURL),
			ContentType: github.Ptr("json"),
			Secret:      github.Ptr(secret),
			InsecureSSL: github.Ptr("0"),
		},
	}

	_, resp, err := g.client.Repositories.CreateHook(ctx, owner, repo, hook)
	if err != nil {
		var ghErr *github.ErrorResponse
		if errors.As(err, &ghErr) &&
			ghErr.Response != nil &&
			ghErr.Response.StatusCode == http.StatusUnprocessableEntity &&
			strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return ErrHookExists
		}
		g.logger.Error("failed to create webhook", "owner", owner, "repo", repo, "error", err)
		return wrapUpstream("create webhook", resp, err)
	}
	return nil
}

// GetRepoFile fetches a single file's content at the given ref.
func (g *gitHubClient) GetRepoFile(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	file, _, resp, err := g.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{
		Ref: ref,
	})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrFileNotFound
		}
		return nil, wrapUpstream("fetch repository file", resp, err)
	}
	if file == nil {
		return nil, ErrFileNotFound
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, wrapUpstream("decode repository file", resp, err)
	}
	return []byte(content), nil
}

// wrapUpstream converts a go-github error into a core.UpstreamError carrying
// the upstream status code and message.
func wrapUpstream(op string, resp *github.Response, err error) error {
	ue := &core.UpstreamError{Op: op, Err: err}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) {
		if ghErr.Response != nil {
			ue.StatusCode = ghErr.Response.StatusCode
		}
		ue.Body = ghErr.Message
	} else if resp != nil {
		ue.StatusCode = resp.StatusCode
	}
	return ue
}
