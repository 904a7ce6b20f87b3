// Package main implements the entry point for the editorial API server:
// the task-scheduling and post-publishing backbone of a multi-author blog.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/editorialhq/editorial-api/internal/config"
	"github.com/editorialhq/editorial-api/internal/platform/logger"
)

// main initializes configuration, logging, the database and the service
// graph, then runs the HTTP server until a shutdown signal arrives.
func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// run wires the application and blocks until shutdown.
func run() error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Set up structured logging using the configured log level
	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	// Establish the database connection pool
	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up database: %w", err)
	}

	// Apply pending migrations before anything touches the schema
	if err := runMigrations(ctx, db, appLogger); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Build the service graph
	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
