package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mamacheck/internal/ui/theme"
)

// QuestionProgress renders how far a questionnaire has got, e.g.
// "●●●○○○  3/6". Long questionnaires that do not fit in width fall back to
// a proportional bar.
func QuestionProgress(done, total, width int) string {
	if total <= 0 {
		return ""
	}
	done = min(max(done, 0), total)
	counter := fmt.Sprintf("  %d/%d", done, total)

	slots := total
	filled := done
	if room := width - lipgloss.Width(counter); slots > room {
		slots = max(room, 4)
		filled = done * slots / total
	}

	bar := lipgloss.NewStyle().Foreground(theme.Secondary).Render(strings.Repeat("●", filled)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("○", slots-filled))
	return bar + theme.Subtitle.Render(counter)
}
