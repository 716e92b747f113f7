package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/avoronov/review-relay/internal/auth"
	"github.com/avoronov/review-relay/internal/config"
	"github.com/avoronov/review-relay/internal/core"
	gh "github.com/avoronov/review-relay/internal/github"
	"github.com/avoronov/review-relay/internal/storage"
)

// RepoHandler serves the session-authenticated repository endpoints: listing
// the user's repositories and installing review webhooks on a selection.
type RepoHandler struct {
	cfg       *config.Config
	store     storage.Store
	newClient gh.ClientFactory
	logger    *slog.Logger
}

// NewRepoHandler creates the repository handler.
func NewRepoHandler(cfg *config.Config, store storage.Store, newClient gh.ClientFactory, logger *slog.Logger) *RepoHandler {
	return &RepoHandler{
		cfg:       cfg,
		store:     store,
		newClient: newClient,
		logger:    logger,
	}
}

type profileRepo struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
}

type profileResponse struct {
	Login        string        `json:"login"`
	Name         string        `json:"name,omitempty"`
	HTMLURL      string        `json:"html_url,omitempty"`
	Repositories []profileRepo `json:"repositories"`
}

// Profile returns the authenticated user's identity and repositories.
func (h *RepoHandler) Profile(w http.ResponseWriter, r *http.Request) {
	client, _, ok := h.clientForSession(w, r)
	if !ok {
		return
	}

	user, err := client.AuthenticatedUser(r.Context())
	if err != nil {
		http.Error(w, "Error fetching user data from GitHub", http.StatusBadGateway)
		return
	}

	repos, err := client.ListRepositories(r.Context())
	if err != nil {
		http.Error(w, "Error fetching repository data from GitHub", http.StatusBadGateway)
		return
	}

	resp := profileResponse{
		Login:   user.GetLogin(),
		Name:    user.GetName(),
		HTMLURL: user.GetHTMLURL(),
	}
	for _, repo := range repos {
		resp.Repositories = append(resp.Repositories, profileRepo{
			Name:     repo.GetName(),
			FullName: repo.GetFullName(),
			Private:  repo.GetPrivate(),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

type createHooksRequest struct {
	Repositories []string `json:"repositories"`
}

type hookResult struct {
	Repository string `json:"repository"`
	Status     string `json:"status"` // created | exists | failed
	Error      string `json:"error,omitempty"`
}

// CreateHooks installs the pull_request webhook on each selected repository.
// Per-repository failures are reported individually; the call fails outright
// only when nothing was selected or every installation failed.
func (h *RepoHandler) CreateHooks(w http.ResponseWriter, r *http.Request) {
	var req createHooksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Repositories) == 0 {
		http.Error(w, "No repositories selected for webhook creation", http.StatusBadRequest)
		return
	}

	client, _, ok := h.clientForSession(w, r)
	if !ok {
		return
	}

	user, err := client.AuthenticatedUser(r.Context())
	if err != nil {
		http.Error(w, "Error fetching user data from GitHub", http.StatusBadGateway)
		return
	}
	owner := user.GetLogin()

	results := make([]hookResult, 0, len(req.Repositories))
	failed := 0
	for _, repo := range req.Repositories {
		err := client.CreateHook(r.Context(), owner, repo, h.cfg.WebhookPayloadURL, h.cfg.GitHubWebhookSecret)
		switch {
		case err == nil:
			h.logger.Info("webhook created", "owner", owner, "repo", repo)
			results = append(results, hookResult{Repository: repo, Status: "created"})
		case errors.Is(err, gh.ErrHookExists):
			h.logger.Info("webhook already exists", "owner", owner, "repo", repo)
			results = append(results, hookResult{Repository: repo, Status: "exists"})
		default:
			failed++
			h.logger.Error("failed to create webhook", "owner", owner, "repo", repo, "error", err)
			results = append(results, hookResult{Repository: repo, Status: "failed", Error: err.Error()})
		}
	}

	status := http.StatusOK
	if failed == len(req.Repositories) {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]any{"results": results})
}

// clientForSession resolves the session's credential into an API client.
func (h *RepoHandler) clientForSession(w http.ResponseWriter, r *http.Request) (gh.Client, *core.Credential, bool) {
	accountID, ok := auth.AccountFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return nil, nil, false
	}

	cred, err := h.store.GetCredential(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, core.ErrNoCredential) {
			http.Error(w, "No credential stored; log in again", http.StatusUnauthorized)
		} else {
			h.logger.Error("credential lookup failed", "account", accountID, "error", err)
			http.Error(w, "Failed to load credential", http.StatusInternalServerError)
		}
		return nil, nil, false
	}

	return h.newClient(r.Context(), cred.AccessToken, h.logger), cred, true
}
