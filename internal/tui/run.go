package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jonathan/banana-cli/internal/session"
)

// Run loads the job list and runs the interactive session until the user
// quits. Pending settings are saved on the way out.
func Run(ctx context.Context, ctrl *session.Controller) error {
	if err := ctrl.Refresh(ctx); err != nil {
		logger := ctrl.Logger()
		logger.Warn().Err(err).Msg("tui: initial refresh failed")
	}

	p := tea.NewProgram(NewModel(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if cerr := ctrl.Close(); cerr != nil {
		return errors.Join(err, cerr)
	}
	return err
}
