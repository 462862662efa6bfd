package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the UI until the user quits or ctx is canceled.
func Run(ctx context.Context, core Core, opts Options) error {
	program := tea.NewProgram(
		New(ctx, core, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := program.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}

		return fmt.Errorf("run terminal UI: %w", err)
	}

	return nil
}
