package watch

import "github.com/charmbracelet/lipgloss"

// theme groups reusable styles for the slot monitor regions.
type theme struct {
	header     lipgloss.Style
	headerMeta lipgloss.Style
	divider    lipgloss.Style
	statusLine lipgloss.Style
	entryBox   lipgloss.Style
	entryTitle lipgloss.Style
	doneTitle  lipgloss.Style
	errTitle   lipgloss.Style
	errBox     lipgloss.Style
	hint       lipgloss.Style
	viewport   lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("25")),
		headerMeta: lipgloss.NewStyle().
			Foreground(lipgloss.Color("110")),
		divider: lipgloss.NewStyle().
			Foreground(lipgloss.Color("60")),
		statusLine: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("222")),
		entryBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("66")).
			Padding(0, 1),
		entryTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("66")).
			Padding(0, 1),
		doneTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("114")).
			Padding(0, 1),
		errTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160")).
			Padding(0, 1),
		errBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("203")).
			Foreground(lipgloss.Color("203")).
			Padding(0, 1),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		viewport: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1),
	}
}
