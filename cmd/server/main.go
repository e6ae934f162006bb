// Package main implements the entry point for the board API server,
// which hosts the collaborative task board HTTP API and the websocket
// endpoint that streams board events to connected clients.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/openkanban/board-api/internal/config"
	"github.com/openkanban/board-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Printf("server exited with error: %v", err)
		os.Exit(1)
	}
}

// run loads configuration, establishes the database connection, applies
// migrations, wires the application, and runs the HTTP server until a
// shutdown signal arrives.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server)
	appLogger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"realtime_backend", cfg.Realtime.Backend)

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database connection", "error", err)
		}
	}()

	if err := runMigrations(db, appLogger); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
