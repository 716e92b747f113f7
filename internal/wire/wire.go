//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"

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

func InitializeApp() (*app.App, func(), error) {
	wire.Build(
		app.NewApp,
		config.LoadConfig,
		db.NewDatabase,
		storage.NewStore,
		llm.NewPromptManager,
		jobs.NewReviewJob,
		jobs.NewDispatcher,
		auth.NewSessionManager,
		github.NewOAuthFlow,
		server.NewRouter,
		server.NewServer,
		provideSlogLogger,
		provideProvider,
		provideGenerator,
		provideClientFactory,
	)
	return &app.App{}, nil, nil
}
