package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette: warm, low-contrast, easy on tired eyes
var (
	Primary   = lipgloss.Color("#0D9488") // Teal
	Secondary = lipgloss.Color("#F59E0B") // Amber
	Accent    = lipgloss.Color("#EC4899") // Rose
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F97316") // Orange
	Error     = lipgloss.Color("#EF4444") // Red
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgCard    = lipgloss.Color("#1E293B") // Dark Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Question = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(1, 2)
)

// States
var (
	OptionKey = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)
)

// Components
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Primary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

// ToneStyle returns the style used to present a wellbeing result with the
// given tone ("joyful", "calm", "concerned" or "alert").
func ToneStyle(tone string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch tone {
	case "joyful":
		return base.Foreground(Success)
	case "calm":
		return base.Foreground(Primary)
	case "concerned":
		return base.Foreground(Secondary)
	case "alert":
		return base.Foreground(Error)
	}
	return base.Foreground(Text)
}
