package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/imageforge/caption-api/internal/caption"
	"github.com/imageforge/caption-api/internal/config"
	"github.com/imageforge/caption-api/internal/job"
	"github.com/imageforge/caption-api/internal/platform/gemini"
	"github.com/imageforge/caption-api/internal/platform/ollama"
	"github.com/imageforge/caption-api/internal/platform/postgres"
	"github.com/imageforge/caption-api/internal/service/auth"
	"github.com/imageforge/caption-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	taskStore store.TaskStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	captioner        caption.Captioner

	// Job processing
	queue    *job.JobQueue
	worker   *job.Worker
	resolver *job.StatusResolver
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewUserStore(db)
	app.taskStore = postgres.NewTaskStore(db)

	app.captioner, err = setupCaptioner(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize captioning backend: %w", err)
	}
	logger.Info("Captioning backend initialized",
		"provider", cfg.Caption.Provider,
		"model", cfg.Caption.Model)

	app.queue = job.NewJobQueue(logger.With("component", "job_queue"))
	app.worker = job.NewWorker(
		app.queue,
		app.captioner,
		app.taskStore,
		job.WorkerConfig{
			PollInterval:   time.Duration(cfg.Worker.PollIntervalSeconds) * time.Second,
			AttemptTimeout: time.Duration(cfg.Caption.RequestTimeoutSeconds) * time.Second,
		},
		logger.With("component", "job_worker"),
	)
	app.resolver = job.NewStatusResolver(app.queue, app.worker)

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupCaptioner builds the captioning backend selected by configuration.
func setupCaptioner(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (caption.Captioner, error) {
	switch cfg.Caption.Provider {
	case "ollama":
		return ollama.NewClient(
			cfg.Caption.URL,
			cfg.Caption.Model,
			logger.With("component", "ollama_client"),
		)
	case "gemini":
		return gemini.NewCaptioner(
			ctx,
			cfg.Caption.GeminiAPIKey,
			cfg.Caption.Model,
			logger.With("component", "gemini_captioner"),
		)
	default:
		return nil, fmt.Errorf("unknown caption provider: %q", cfg.Caption.Provider)
	}
}

// Run starts the job worker and the HTTP server, handling lifecycle and
// cleanup. It returns an error if the server fails to start or encounters
// problems.
func (app *application) Run(ctx context.Context) error {
	app.worker.Start()

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.worker != nil {
		app.worker.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
