package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// Run starts the full-screen program and blocks until the user quits.
// Requests still in flight are abandoned through ctx.
func Run(ctx context.Context, api TodoAPI, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := New(ctx, api, log)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	log.Debug().Msg("tui exited")
	return nil
}
