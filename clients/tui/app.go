package tui

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the TUI over backend and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, backend Backend) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewMainModel(ctx, backend), tea.WithAltScreen(), tea.WithContext(ctx))

	go backend.Watch(ctx, p.Send)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		slog.Error("tui exited", "error", err)
		return err
	}
	return nil
}
