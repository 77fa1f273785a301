package tui

import (
	"time"

	"mailtriage/internal/dashboard"
)

// A message carrying the controller's current snapshot after a refresh tick.
type snapshotTickMsg struct{ Time time.Time }

// A message fired when a selection's response fetch has settled.
type selectionDoneMsg struct{}

// A message carrying the result of a dispatched action.
type actionDoneMsg struct {
	Action  string
	Outcome dashboard.Outcome
}

// Message to clear a temporary status message after a timeout.
type clearTempStatusMsg struct{}
