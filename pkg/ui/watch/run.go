// Package watch renders a live terminal view of one data slot: the status
// line, the log tail, and the inbox depth, re-read on a fixed interval.
package watch

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"talewire/pkg/store"
)

// Run blocks until the viewer exits.
func Run(st *store.Store, slot int, refresh time.Duration) error {
	if refresh <= 0 {
		refresh = 2 * time.Second
	}

	program := tea.NewProgram(newModel(st, slot, refresh), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
