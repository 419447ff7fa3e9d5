// Package main implements the entry point for the caption API server,
// which accepts image uploads, queues them for captioning by a vision
// model backend, and serves caption results and request status.
package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/imageforge/caption-api/internal/config"
	"github.com/imageforge/caption-api/internal/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"caption_provider", cfg.Caption.Provider)

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := runMigrations(db, appLogger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
