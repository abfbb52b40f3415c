package tui

import "github.com/charmbracelet/lipgloss/v2"

type theme struct {
	Header   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Code     lipgloss.Style
	Invalid  lipgloss.Style
	Editing  lipgloss.Style
	Urgent   lipgloss.Style
	Success  lipgloss.Style
	Danger   lipgloss.Style
	Prompt   lipgloss.Style
}

func defaultTheme() theme {
	accent := lipgloss.Color("#00FFFF")
	secondary := lipgloss.Color("#7D7D7D")
	success := lipgloss.Color("#00FF00")
	alert := lipgloss.Color("#FFBF00")
	danger := lipgloss.Color("#FF0055")

	return theme{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		Muted: lipgloss.NewStyle().
			Foreground(secondary),
		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent),
		Code: lipgloss.NewStyle().
			Bold(true),
		Invalid: lipgloss.NewStyle().
			Foreground(danger),
		Editing: lipgloss.NewStyle().
			Underline(true).
			Foreground(alert),
		Urgent: lipgloss.NewStyle().
			Foreground(alert),
		Success: lipgloss.NewStyle().
			Foreground(success),
		Danger: lipgloss.NewStyle().
			Foreground(danger),
		Prompt: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
	}
}
