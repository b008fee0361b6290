package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/banana-cli/internal/config"
	"github.com/jonathan/banana-cli/internal/session"
	"github.com/jonathan/banana-cli/internal/tui"
)

// tuiLogFile receives logs while the interactive session owns the screen
const tuiLogFile = "banana.log"

func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dir, err := config.DataDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	logFile, err := os.OpenFile(filepath.Join(dir, tuiLogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = logFile.Close() }()

	a, err := newApp(ctx, logFile)
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl := session.New(a.store, a.cfg, session.NewPipelineFactory(a.store, a.logger), a.logger)
	return tui.Run(ctx, ctrl)
}
