package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorText    lipgloss.Color = "#cdd6f4"
	colorMuted   lipgloss.Color = "#a6adc8"
	colorBorder  lipgloss.Color = "#585b70"
	colorAccent  lipgloss.Color = "#89b4fa"
	colorSuccess lipgloss.Color = "#a6e3a1"
	colorWarning lipgloss.Color = "#f9e2af"
	colorError   lipgloss.Color = "#f38ba8"
	colorSurface lipgloss.Color = "#313244"
)

var (
	appStyle    = lipgloss.NewStyle().Foreground(colorText)
	titleStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	subjectText = lipgloss.NewStyle().Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorMuted).
				Padding(0, 1)
	doneTabStyle = lipgloss.NewStyle().
			Foreground(colorSuccess).
			Padding(0, 1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(56)
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorAccent).
			Padding(0, 2)

	undoStyle = lipgloss.NewStyle().
			Background(colorSurface).
			Foreground(colorWarning).
			Padding(0, 1)
	statusStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	statusErrStyle = lipgloss.NewStyle().Foreground(colorError)
	keyStyle       = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	helpDescStyle  = lipgloss.NewStyle().Foreground(colorMuted)
)

func priorityStyle(p string) lipgloss.Style {
	switch p {
	case "critical":
		return lipgloss.NewStyle().Foreground(colorError).Bold(true)
	case "high":
		return lipgloss.NewStyle().Foreground(colorWarning)
	}
	return mutedStyle
}
