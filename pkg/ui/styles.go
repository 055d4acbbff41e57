package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorSuccess = lipgloss.AdaptiveColor{Light: "2", Dark: "2"}
	ColorError   = lipgloss.AdaptiveColor{Light: "1", Dark: "1"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "5", Dark: "5"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "6", Dark: "6"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "3", Dark: "3"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "4", Dark: "4"}
	ColorDefault = lipgloss.AdaptiveColor{Light: "7", Dark: "7"}

	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StylePrimary lipgloss.Style
	StyleInfo    lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleAccent  lipgloss.Style

	StyleTitle       lipgloss.Style
	StyleHeader      lipgloss.Style
	StyleBold        lipgloss.Style
	StyleTableHeader lipgloss.Style
	StyleTableRow    lipgloss.Style
	StyleTableRowAlt lipgloss.Style
	StyleTableBorder lipgloss.Style

	IconSuccess = "✔"
	IconError   = "✘"
	IconInfo    = "ℹ"
	IconWarning = "⚠"
	IconLink    = "🔗"
)

func init() {
	SetPalette("auto")
}

// SetPalette applies the terminal color scheme ("auto", "dark", "light").
func SetPalette(scheme string) {
	switch scheme {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	default:
		// Auto: lipgloss detects automatically
	}

	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	StyleError = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	StylePrimary = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleInfo = lipgloss.NewStyle().Foreground(ColorInfo)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleWarning = lipgloss.NewStyle().Foreground(ColorWarning).Bold(true)
	StyleAccent = lipgloss.NewStyle().Foreground(ColorAccent)

	StyleTitle = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Underline(true)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true)
	StyleBold = lipgloss.NewStyle().Bold(true)

	StyleTableHeader = lipgloss.NewStyle().Foreground(ColorPrimary).Bold(true).Align(lipgloss.Left)
	StyleTableRow = lipgloss.NewStyle().Foreground(ColorDefault)
	StyleTableRowAlt = lipgloss.NewStyle().Foreground(ColorDefault).Faint(true)
	StyleTableBorder = lipgloss.NewStyle().Foreground(ColorMuted)
}

// Success returns a success message with icon.
func Success(msg string) string {
	return StyleSuccess.Render(IconSuccess + " " + msg)
}

// Error returns an error message with icon.
func Error(msg string) string {
	return StyleError.Render(IconError + " " + msg)
}

// Info returns an info message with icon.
func Info(msg string) string {
	return StyleInfo.Render(IconInfo + " " + msg)
}

// Warning returns a warning message with icon.
func Warning(msg string) string {
	return StyleWarning.Render(IconWarning + " " + msg)
}

// Title returns a formatted section title.
func Title(title string) string {
	return StyleTitle.Render(title)
}

// Muted returns subtle text.
func Muted(text string) string {
	return StyleMuted.Render(text)
}

// Bold returns bold text.
func Bold(text string) string {
	return StyleBold.Render(text)
}
