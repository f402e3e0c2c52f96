// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/led-inventory/internal/model"
)

// Palette.
var (
	PrimaryColor = lipgloss.Color("#4D96FF")
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	InfoColor    = lipgloss.Color("#95E1D3")
	SubtleColor  = lipgloss.Color("#666666")
	BorderColor  = lipgloss.Color("#333333")
)

var (
	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor).MarginBottom(1)

	// SubtitleStyle is used for secondary headings such as table captions.
	SubtitleStyle = lipgloss.NewStyle().Foreground(SubtleColor).MarginBottom(1)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)

	// BoxStyle frames single-record views like `panels show`.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	// PromptStyle is used for y/N questions.
	PromptStyle = lipgloss.NewStyle().Bold(true).Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	PanelIcon   = "🖥️"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the panel icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(PanelIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content in a bordered box headed by title.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content,
	))
}

// FormatCategory renders a panel category, flagging panels no rule matched.
func FormatCategory(category string) string {
	switch category {
	case "":
		return SubtleStyle.Render("-")
	case model.UndeterminedCategory:
		return WarningStyle.Render(category)
	default:
		return InfoStyle.Render(category)
	}
}

// FormatStatus renders a panel status. Unknown states are shown unstyled.
func FormatStatus(status model.PanelStatus) string {
	switch status {
	case model.StatusActive:
		return SuccessStyle.Render(string(status))
	case model.StatusInactive:
		return SubtleStyle.Render(string(status))
	default:
		return string(status)
	}
}

// FormatActive renders a rule's active flag as a check mark or a dash.
func FormatActive(active bool) string {
	if active {
		return SuccessStyle.Render(SuccessIcon)
	}
	return SubtleStyle.Render("-")
}
