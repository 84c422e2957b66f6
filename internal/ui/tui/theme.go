package tui

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles of the browser. Colors are 256-color codes so
// they degrade on plain terminals.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Card     lipgloss.Style

	// Running styles the spinner shown while a solve is in flight.
	Running lipgloss.Style
	Toast   lipgloss.Style
	Error   lipgloss.Style
}

func DefaultTheme() Theme {
	faint := lipgloss.NewStyle().Faint(true)
	return Theme{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Subtitle: faint,
		Help:     faint,
		Card: lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
		Running: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Toast:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	}
}
