package handler

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/avoronov/review-relay/internal/auth"
	"github.com/avoronov/review-relay/internal/core"
	gh "github.com/avoronov/review-relay/internal/github"
	"github.com/avoronov/review-relay/internal/storage"
)

const stateCookieName = "rr_oauth_state"

// AuthHandler implements the OAuth login/callback endpoints. A successful
// callback upserts the account's credential and issues a session cookie.
type AuthHandler struct {
	flow      *gh.OAuthFlow
	store     storage.Store
	sessions  *auth.SessionManager
	newClient gh.ClientFactory
	logger    *slog.Logger
}

// NewAuthHandler creates the OAuth handler.
func NewAuthHandler(flow *gh.OAuthFlow, store storage.Store, sessions *auth.SessionManager, newClient gh.ClientFactory, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		flow:      flow,
		store:     store,
		sessions:  sessions,
		newClient: newClient,
		logger:    logger,
	}
}

// Login redirects the user to GitHub's authorization page with a fresh state
// nonce.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		h.logger.Error("failed to generate oauth state", "error", err)
		http.Error(w, "Failed to start login", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/auth",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.flow.AuthCodeURL(state), http.StatusFound)
}

// Callback exchanges the authorization code, stores the credential keyed by
// the authenticated user's numeric ID, and issues a session.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "No authorization code provided", http.StatusBadRequest)
		return
	}

	token, err := h.flow.Exchange(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to obtain access token", http.StatusBadGateway)
		return
	}

	user, err := h.newClient(r.Context(), token, h.logger).AuthenticatedUser(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch user details", http.StatusBadGateway)
		return
	}
	if user.GetID() == 0 {
		http.Error(w, "GitHub returned no user ID", http.StatusBadGateway)
		return
	}

	accountID := strconv.FormatInt(user.GetID(), 10)
	cred := &core.Credential{
		AccountID:    accountID,
		AccountLogin: user.GetLogin(),
		AccessToken:  token,
	}
	if err := h.store.UpsertCredential(r.Context(), cred); err != nil {
		h.logger.Error("failed to store credential", "account", accountID, "error", err)
		http.Error(w, "Failed to store credential", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Issue(w, accountID); err != nil {
		h.logger.Error("failed to issue session", "account", accountID, "error", err)
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	h.logger.Info("account authorized", "account", accountID, "login", user.GetLogin())
	writeJSON(w, http.StatusOK, map[string]string{
		"account_id": accountID,
		"login":      user.GetLogin(),
	})
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
