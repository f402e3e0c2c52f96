package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the review screen.
type Theme struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Cursor   lipgloss.Style
	Keep     lipgloss.Style
	Delete   lipgloss.Style
	Muted    lipgloss.Style
	Footer   lipgloss.Style
}

// DefaultTheme is the default theme.
var DefaultTheme = Theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#4D96FF")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fafafa")),
	Cursor: lipgloss.NewStyle().
		Background(lipgloss.Color("#404040")).
		Foreground(lipgloss.Color("#fafafa")).
		Bold(true),
	Keep: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")),
	Delete: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	Footer: lipgloss.NewStyle().
		MarginTop(1),
}
