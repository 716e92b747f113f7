// Package handler provides the HTTP handlers for the application.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"

	"github.com/avoronov/review-relay/internal/config"
	"github.com/avoronov/review-relay/internal/core"
)

// WebhookHandler processes incoming webhook deliveries from GitHub. Each
// delivery is classified and, for triggering pull_request actions, runs the
// review pipeline synchronously so the response reflects its outcome.
type WebhookHandler struct {
	cfg        *config.Config
	dispatcher core.JobDispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(cfg *config.Config, dispatcher core.JobDispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle validates, classifies, and processes one delivery.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := github.ValidatePayload(r, []byte(h.cfg.GitHubWebhookSecret))
	if err != nil {
		h.logger.Error("invalid webhook payload signature", "error", err)
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("could not parse webhook", "error", err)
		http.Error(w, "Could not parse webhook", http.StatusBadRequest)
		return
	}

	switch e := event.(type) {
	case *github.PingEvent:
		writeJSON(w, http.StatusOK, map[string]string{"msg": "pong"})
	case *github.PullRequestEvent:
		h.handlePullRequest(r.Context(), w, e)
	default:
		h.logger.Debug("ignoring unhandled webhook event type", "type", github.WebHookType(r))
		writeText(w, http.StatusOK, "Event type not handled")
	}
}

// handlePullRequest runs the review pipeline for triggering actions and maps
// the outcome onto the delivery response.
func (h *WebhookHandler) handlePullRequest(ctx context.Context, w http.ResponseWriter, event *github.PullRequestEvent) {
	reviewEvent, err := core.EventFromPullRequest(event)
	switch {
	case errors.Is(err, core.ErrIgnoredAction):
		h.logger.Debug("ignoring pull request action",
			"action", event.GetAction(), "repo", event.GetRepo().GetFullName())
		writeText(w, http.StatusOK, "Action ignored")
		return
	case err != nil:
		h.logger.Error("malformed pull request payload", "error", err)
		http.Error(w, "Invalid pull request payload", http.StatusBadRequest)
		return
	}

	err = h.dispatcher.Dispatch(ctx, reviewEvent)
	if err == nil {
		h.logger.Info("review delivered", "repo", reviewEvent.RepoFullName, "pr", reviewEvent.PRNumber)
		writeText(w, http.StatusOK, "Webhook processed")
		return
	}

	var upstreamErr *core.UpstreamError
	var genErr *core.GenerationError

	switch {
	case errors.Is(err, core.ErrAlreadyReviewed):
		writeText(w, http.StatusOK, "Commit already reviewed")
	case errors.Is(err, core.ErrNoCredential):
		http.Error(w, "No credential stored for repository owner", http.StatusBadRequest)
	case errors.Is(err, core.ErrMalformedPayload):
		http.Error(w, "Invalid pull request payload", http.StatusBadRequest)
	case errors.As(err, &upstreamErr):
		h.logger.Error("upstream call failed",
			"op", upstreamErr.Op, "status", upstreamErr.StatusCode,
			"repo", reviewEvent.RepoFullName, "pr", reviewEvent.PRNumber)
		http.Error(w, "Upstream API call failed", http.StatusBadGateway)
	case errors.As(err, &genErr):
		h.logger.Error("review generation failed",
			"provider", genErr.Provider, "repo", reviewEvent.RepoFullName, "pr", reviewEvent.PRNumber)
		http.Error(w, "Failed to generate review", http.StatusBadGateway)
	default:
		h.logger.Error("review pipeline failed",
			"error", err, "repo", reviewEvent.RepoFullName, "pr", reviewEvent.PRNumber)
		http.Error(w, "Failed to process webhook", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	_, _ = w.Write([]byte(msg))
}
