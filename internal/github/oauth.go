package github

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/avoronov/review-relay/internal/config"
)

// OAuthFlow handles the GitHub authorization-code exchange. The three-step
// redirect dance lives in the HTTP handlers; this type owns the oauth2
// configuration and the token exchange.
type OAuthFlow struct {
	conf   *oauth2.Config
	logger *slog.Logger
}

// NewOAuthFlow builds the flow from the configured OAuth app credentials.
// The "repo" scope is required to install webhooks and post comments.
func NewOAuthFlow(cfg *config.Config, logger *slog.Logger) *OAuthFlow {
	return &OAuthFlow{
		conf: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			Endpoint:     oauthgithub.Endpoint,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"repo"},
		},
		logger: logger,
	}
}

// AuthCodeURL returns the GitHub authorization page URL for the given state.
func (f *OAuthFlow) AuthCodeURL(state string) string {
	return f.conf.AuthCodeURL(state)
}

// Exchange swaps an authorization code for an access token.
func (f *OAuthFlow) Exchange(ctx context.Context, code string) (string, error) {
	token, err := f.conf.Exchange(ctx, code)
	if err != nil {
		f.logger.Error("oauth code exchange failed", "error", err)
		return "", fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("authorization exchange returned an empty token")
	}
	return token.AccessToken, nil
}
