// Package app ties the configured components into a runnable application.
package app

import (
	"log/slog"

	"github.com/avoronov/review-relay/internal/config"
	"github.com/avoronov/review-relay/internal/db"
	"github.com/avoronov/review-relay/internal/server"
	"github.com/avoronov/review-relay/internal/storage"
)

// App holds the main application components.
type App struct {
	Cfg    *config.Config
	Server *server.Server
	Store  storage.Store
	DB     *db.DB
	Logger *slog.Logger
}

// NewApp assembles the application from its wired components.
func NewApp(cfg *config.Config, srv *server.Server, store storage.Store, dbConn *db.DB, logger *slog.Logger) *App {
	return &App{
		Cfg:    cfg,
		Server: srv,
		Store:  store,
		DB:     dbConn,
		Logger: logger,
	}
}

// Start runs the HTTP server and blocks until shutdown or error.
func (a *App) Start() error {
	a.Logger.Info("starting review-relay",
		"server_port", a.Cfg.ServerPort,
		"llm_provider", a.Cfg.LLMProvider,
		"generator_model", a.Cfg.GeneratorModelName,
		"max_concurrent_reviews", a.Cfg.MaxConcurrentReviews,
	)
	return a.Server.Start()
}

// Stop shuts the application down cleanly. In-flight deliveries get to
// finish; the database pool is closed by the wire cleanup.
func (a *App) Stop() error {
	a.Logger.Info("shutting down review-relay")

	if err := a.Server.Stop(); err != nil {
		a.Logger.Error("error during HTTP server shutdown", "error", err)
		return err
	}

	a.Logger.Info("review-relay stopped")
	return nil
}
