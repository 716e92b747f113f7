package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/review-relay/internal/config"
	"github.com/avoronov/review-relay/internal/core"
)

const testWebhookSecret = "hook-secret"

type fakeDispatcher struct {
	err    error
	calls  int
	lastEv *core.ReviewEvent
}

func (f *fakeDispatcher) Dispatch(_ context.Context, event *core.ReviewEvent) error {
	f.calls++
	f.lastEv = event
	return f.err
}

func signedRequest(t *testing.T, eventType string, payload []byte, secret string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/github", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-GitHub-Event", eventType)

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	req.Header.Set("X-Hub-Signature-256", "sha256="+hex.EncodeToString(mac.Sum(nil)))
	return req
}

func pullRequestPayload(t *testing.T, action string) []byte {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"action": action,
		"pull_request": map[string]any{
			"number":   42,
			"title":    "Add retry logic",
			"html_url": "https://github.com/acme/widgets/pull/42",
			"head":     map[string]any{"sha": "abc123"},
		},
		"repository": map[string]any{
			"name":      "widgets",
			"full_name": "acme/widgets",
			"owner":     map[string]any{"login": "acme", "id": 9001},
		},
	})
	require.NoError(t, err)
	return payload
}

func newTestHandler(dispatcher core.JobDispatcher) *WebhookHandler {
	cfg := &config.Config{GitHubWebhookSecret: testWebhookSecret}
	return NewWebhookHandler(cfg, dispatcher, slog.Default())
}

func TestWebhookHandle(t *testing.T) {
	t.Run("invalid signature is rejected", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		h := newTestHandler(dispatcher)

		req := signedRequest(t, "pull_request", pullRequestPayload(t, "opened"), "wrong-secret")
		rec := httptest.NewRecorder()
		h.Handle(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Zero(t, dispatcher.calls)
	})

	t.Run("unparsable payload is a bad request", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		h := newTestHandler(dispatcher)

		req := signedRequest(t, "pull_request", []byte("{not json"), testWebhookSecret)
		rec := httptest.NewRecorder()
		h.Handle(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, dispatcher.calls)
	})

	t.Run("ping answers pong without dispatching", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		h := newTestHandler(dispatcher)

		req := signedRequest(t, "ping", []byte(`{"zen":"Keep it logically awesome."}`), testWebhookSecret)
		rec := httptest.NewRecorder()
		h.Handle(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "pong")
		assert.Zero(t, dispatcher.calls)
	})

	t.Run("unhandled event types are acknowledged", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		h := newTestHandler(dispatcher)

		req := signedRequest(t, "issues", []byte(`{"action":"opened"}`), testWebhookSecret)
		rec := httptest.NewRecorder()
		h.Handle(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, dispatcher.calls)
	})

	t.Run("non-triggering action is acknowledged without dispatching", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		h := newTestHandler(dispatcher)

		req := signedRequest(t, "pull_request", pullRequestPayload(t, "closed"), testWebhookSecret)
		rec := httptest.NewRecorder()
		h.Handle(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Zero(t, dispatcher.calls)
	})

	t.Run("payload missing required fields is a bad request", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		h := newTestHandler(dispatcher)

		payload, err := json.Marshal(map[string]any{"action": "opened"})
		require.NoError(t, err)

		req := signedRequest(t, "pull_request", payload, testWebhookSecret)
		rec := httptest.NewRecorder()
		h.Handle(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Zero(t, dispatcher.calls)
	})

	t.Run("successful pipeline run is a 200", func(t *testing.T) {
		dispatcher := &fakeDispatcher{}
		h := newTestHandler(dispatcher)

		req := signedRequest(t, "pull_request", pullRequestPayload(t, "opened"), testWebhookSecret)
		rec := httptest.NewRecorder()
		h.Handle(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Webhook processed")

		require.Equal(t, 1, dispatcher.calls)
		assert.Equal(t, "acme/widgets", dispatcher.lastEv.RepoFullName)
		assert.Equal(t, 42, dispatcher.lastEv.PRNumber)
		assert.Equal(t, "abc123", dispatcher.lastEv.HeadSHA)
		assert.Equal(t, "9001", dispatcher.lastEv.OwnerAccountID)
	})

	t.Run("pipeline outcomes map onto delivery responses", func(t *testing.T) {
		tests := []struct {
			name       string
			err        error
			wantStatus int
		}{
			{"already reviewed", core.ErrAlreadyReviewed, http.StatusOK},
			{"no credential", core.ErrNoCredential, http.StatusBadRequest},
			{"malformed", core.ErrMalformedPayload, http.StatusBadRequest},
			{"upstream failure", &core.UpstreamError{Op: "fetch diff", StatusCode: 503}, http.StatusBadGateway},
			{"generation failure", &core.GenerationError{Provider: "gemini", Err: errors.New("quota")}, http.StatusBadGateway},
			{"unexpected", errors.New("database is on fire"), http.StatusInternalServerError},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				h := newTestHandler(&fakeDispatcher{err: tt.err})

				req := signedRequest(t, "pull_request", pullRequestPayload(t, "synchronize"), testWebhookSecret)
				rec := httptest.NewRecorder()
				h.Handle(rec, req)

				assert.Equal(t, tt.wantStatus, rec.Code)
			})
		}
	})
}
