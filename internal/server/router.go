package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/avoronov/review-relay/internal/auth"
	"github.com/avoronov/review-relay/internal/config"
	"github.com/avoronov/review-relay/internal/core"
	gh "github.com/avoronov/review-relay/internal/github"
	"github.com/avoronov/review-relay/internal/server/handler"
	"github.com/avoronov/review-relay/internal/storage"
)

// NewRouter creates and configures the HTTP router with middleware and all
// application routes.
func NewRouter(
	cfg *config.Config,
	dispatcher core.JobDispatcher,
	store storage.Store,
	sessions *auth.SessionManager,
	flow *gh.OAuthFlow,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	authHandler := handler.NewAuthHandler(flow, store, sessions, gh.NewTokenClient, logger)
	r.Get("/auth/login", authHandler.Login)
	r.Get("/auth/callback", authHandler.Callback)

	r.Route("/api/v1", func(r chi.Router) {
		webhookHandler := handler.NewWebhookHandler(cfg, dispatcher, logger)
		r.Post("/webhook/github", webhookHandler.Handle)

		repoHandler := handler.NewRepoHandler(cfg, store, gh.NewTokenClient, logger)
		r.Group(func(r chi.Router) {
			r.Use(sessions.Middleware)
			r.Get("/profile", repoHandler.Profile)
			r.Post("/hooks", repoHandler.CreateHooks)
		})
	})

	return r
}
