// Package auth implements cookie sessions for the OAuth-facing endpoints.
// The session is an explicit object carrying only the account identifier;
// tokens themselves stay in the credential store.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// CookieName is the session cookie set after a successful OAuth callback.
const CookieName = "rr_session"

type contextKey struct{}

// SessionManager issues and verifies HS256-signed session cookies.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
	logger *slog.Logger
}

// NewSessionManager creates a manager signing sessions with the given secret.
func NewSessionManager(secret string, logger *slog.Logger) *SessionManager {
	return &SessionManager{
		secret: []byte(secret),
		ttl:    24 * time.Hour,
		logger: logger,
	}
}

// Issue signs a session token for the account and sets it as a cookie.
func (m *SessionManager) Issue(w http.ResponseWriter, accountID string) error {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// AccountID extracts and verifies the account identifier from the request's
// session cookie.
func (m *SessionManager) AccountID(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", fmt.Errorf("no session cookie: %w", err)
	}

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("session token has no subject")
	}
	return claims.Subject, nil
}

// Middleware rejects requests without a valid session and stores the account
// identifier in the request context.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, err := m.AccountID(r)
		if err != nil {
			m.logger.Debug("rejecting unauthenticated request", "path", r.URL.Path, "reason", err)
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), contextKey{}, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccountFromContext returns the account identifier stored by Middleware.
func AccountFromContext(ctx context.Context) (string, bool) {
	accountID, ok := ctx.Value(contextKey{}).(string)
	return accountID, ok
}
