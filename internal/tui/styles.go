package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentColor   = lipgloss.Color("#FFA500")
	mutedColor    = lipgloss.Color("#888888")
	gridColor     = lipgloss.Color("#3A3A3A")
	responseColor = lipgloss.Color("#FFFFFF")
	leftColor     = lipgloss.Color("#00AA00")
	rightColor    = lipgloss.Color("#00AAAA")
	bypassColor   = lipgloss.Color("#A40000")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accentColor)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(accentColor)

	bypassedStyle = lipgloss.NewStyle().
			Foreground(bypassColor)

	helpStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	cellStyles = [...]lipgloss.Style{
		cellEmpty:    lipgloss.NewStyle(),
		cellGrid:     lipgloss.NewStyle().Foreground(gridColor),
		cellLeft:     lipgloss.NewStyle().Foreground(leftColor),
		cellRight:    lipgloss.NewStyle().Foreground(rightColor),
		cellResponse: lipgloss.NewStyle().Bold(true).Foreground(responseColor),
	}
)
