// Package layout draws the chrome around terminal screens.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mamacheck/internal/ui/theme"
)

const (
	MinWidth  = 60
	MinHeight = 20

	CompactWidthThreshold = 90
)

const brand = "MamaCheck"

// KeyHint is a key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// IsCompactWidth reports whether width calls for the narrow layout.
func IsCompactWidth(width int) bool {
	return width < CompactWidthThreshold
}

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// Frame is the header and footer around a screen. RTL mirrors the header
// and right-aligns the footer for Arabic sessions.
type Frame struct {
	Title  string
	Status string
	Hints  []KeyHint
	RTL    bool
}

// Render draws the frame at width x height and fills the space between
// header and footer with body.
func (f Frame) Render(width, height int, body func(width, height int) string) string {
	header := f.header(width)
	footer := f.footer(width)

	h := max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := lipgloss.NewStyle().
		Width(width).
		Height(h).
		MaxHeight(h).
		Render(body(width, h))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (f Frame) header(width int) string {
	start := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(brand)
	end := lipgloss.NewStyle().Foreground(theme.Accent).Render(f.Status)
	if f.RTL {
		start, end = end, start
	}
	title := theme.Body.Render(f.Title)

	inner := max(width-6, 0)
	left := max((inner-lipgloss.Width(title))/2-lipgloss.Width(start), 1)
	right := max(inner-lipgloss.Width(start)-left-lipgloss.Width(title)-lipgloss.Width(end), 1)
	line := start + strings.Repeat(" ", left) + title + strings.Repeat(" ", right) + end

	return bar(width).Padding(0, 1).Render(line)
}

func (f Frame) footer(width int) string {
	parts := make([]string, 0, len(f.Hints))
	for _, h := range f.Hints {
		parts = append(parts,
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(h.Key)+" "+
				theme.Subtitle.Render(h.Description))
	}
	line := strings.Join(parts, theme.Subtitle.Render("  ·  "))

	style := bar(width).Padding(0, 1)
	if f.RTL {
		style = style.Align(lipgloss.Right)
	}
	return style.Render(line)
}

func bar(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Width(width).
		Background(theme.BgCard).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border)
}

// TooSmall renders the resize notice in both languages, since it can show
// before a language is chosen.
func TooSmall(width, height int) string {
	msg := fmt.Sprintf(
		"Terminal too small\nPlease resize to at least %d x %d\n\nالنافذة صغيرة جدًا\nيرجى تكبيرها إلى %d × %d على الأقل\n\n%d x %d",
		MinWidth, MinHeight, MinWidth, MinHeight, width, height,
	)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.Body.Render(msg))
}
