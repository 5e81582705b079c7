package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the dashboard. All-motion mouse tracking reports releases from
// the whole screen, so a drag released off the timeline still ends.
func Run(opts Options) error {
	applyColorProfilePreference()
	m := newAppModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
	return err
}
