// Code generated manually. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package wire

import (
	"fmt"

	"github.com/avoronov/review-relay/internal/app"
	"github.com/avoronov/review-relay/internal/auth"
	"github.com/avoronov/review-relay/internal/config"
	"github.com/avoronov/review-relay/internal/db"
	"github.com/avoronov/review-relay/internal/github"
	"github.com/avoronov/review-relay/internal/jobs"
	"github.com/avoronov/review-relay/internal/llm"
	"github.com/avoronov/review-relay/internal/server"
	"github.com/avoronov/review-relay/internal/storage"
)

// InitializeApp creates and wires all application dependencies.
func InitializeApp() (*app.App, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := provideSlogLogger(cfg)

	dbConn, dbCleanup, err := db.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := storage.NewStore(dbConn.DB)

	provider, err := provideProvider(cfg)
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create completion provider: %w", err)
	}

	promptMgr, err := llm.NewPromptManager()
	if err != nil {
		dbCleanup()
		return nil, nil, fmt.Errorf("failed to create prompt manager: %w", err)
	}

	generator := provideGenerator(cfg, provider, promptMgr, slogLogger)
	reviewJob := jobs.NewReviewJob(cfg, store, generator, provideClientFactory(), slogLogger)
	dispatcher := jobs.NewDispatcher(reviewJob, cfg.MaxConcurrentReviews, slogLogger)

	sessions := auth.NewSessionManager(cfg.SessionSecret, slogLogger)
	oauthFlow := github.NewOAuthFlow(cfg, slogLogger)

	router := server.NewRouter(cfg, dispatcher, store, sessions, oauthFlow, slogLogger)
	httpServer := server.NewServer(cfg.ServerPort, cfg.RequestTimeout, router, slogLogger)

	application := app.NewApp(cfg, httpServer, store, dbConn, slogLogger)
	return application, dbCleanup, nil
}
