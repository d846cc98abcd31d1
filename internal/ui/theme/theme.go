package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mamacheck/internal/knowledge"
)

// Color palette. Calm clinical tones; the tier colors carry the meaning.
var (
	Primary   = lipgloss.Color("#DB2777") // Rose
	Secondary = lipgloss.Color("#0EA5E9") // Sky
	Accent    = lipgloss.Color("#F59E0B") // Amber
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#EF4444") // Red
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	BgDark    = lipgloss.Color("#0F172A") // Deep Navy
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

	Label = lipgloss.NewStyle().
		Foreground(Secondary).
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
	Selected = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(Text)

	Invalid = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// TierColor maps a risk tier to its color. Unknown tiers are dim.
func TierColor(t knowledge.Tier) color.Color {
	switch t {
	case knowledge.TierHigh:
		return Error
	case knowledge.TierMedium:
		return Accent
	case knowledge.TierLow:
		return Success
	default:
		return TextDim
	}
}

// TierBadge renders the tier as a colored badge.
func TierBadge(t knowledge.Tier) string {
	return lipgloss.NewStyle().
		Background(TierColor(t)).
		Foreground(BgDark).
		Bold(true).
		Padding(0, 1).
		Render(string(t))
}
