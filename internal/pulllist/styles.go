package pulllist

import "github.com/charmbracelet/lipgloss"

var (
	mutedColor  = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
	accentColor = lipgloss.AdaptiveColor{Light: "#D7263D", Dark: "#FF6B6B"}

	indicatorStyle = lipgloss.NewStyle().Foreground(accentColor)
	footerStyle    = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 2)
	emptyStyle     = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1).
			Align(lipgloss.Center)
)
