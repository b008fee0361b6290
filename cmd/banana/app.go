package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/db"
	"github.com/jonathan/banana-cli/internal/job"
	"github.com/jonathan/banana-cli/internal/observability"
)

// app bundles the process-scoped dependencies shared by the commands
type app struct {
	cfg    *config.Config
	store  job.Store
	logger zerolog.Logger
}

// loadConfig reads the configuration from --config or the default path
func loadConfig() (*config.Config, error) {
	path := rootConfigPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger for the level chosen by flag or environment
func newLogger(w io.Writer) zerolog.Logger {
	level := rootLogLevel
	if level == "" {
		level = os.Getenv(observability.EnvLogLevel)
	}
	return observability.NewLogger(w, level)
}

// newApp loads configuration and opens the job store. Logs go to logOut.
func newApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(logOut)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, store: store, logger: logger}, nil
}

// openStore connects to Postgres when a database URL is configured and
// falls back to the SQLite file in the data directory otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (job.Store, error) {
	if url := cfg.DatabaseURL(); url != "" {
		database, err := db.Connect(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := database.EnsureSchema(ctx); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("failed to prepare database: %w", err)
		}
		logger.Debug().Msg("store: using postgres")
		return database, nil
	}

	dir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	store, err := db.OpenSQLite(ctx, filepath.Join(dir, db.SQLiteFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open job store: %w", err)
	}
	logger.Debug().Str("path", store.Path()).Msg("store: using sqlite")
	return store, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close store")
	}
}
