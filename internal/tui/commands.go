package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mailtriage/internal/dashboard"
	"mailtriage/internal/model"
)

// snapshotTickCmd re-reads the controller state on a short cadence so the
// poller's background refreshes reach the screen.
func snapshotTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return snapshotTickMsg{Time: t}
	})
}

// selectCmd runs the selection's response fetch off the UI loop.
func selectCmd(c *dashboard.Controller, email model.Email) tea.Cmd {
	return func() tea.Msg {
		c.Select(context.Background(), email)
		return selectionDoneMsg{}
	}
}

// actionCmd dispatches one controller action and reports its outcome.
func actionCmd(name string, fn func(ctx context.Context) dashboard.Outcome) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{Action: name, Outcome: fn(context.Background())}
	}
}
