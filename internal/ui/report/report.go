// Package report renders an assessment for the terminal.
package report

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/risk"
	"github.com/abhisek/mamacheck/internal/screening"
	"github.com/abhisek/mamacheck/internal/ui/theme"
)

type labels struct {
	title          string
	tier           string
	score          string
	condition      string
	factors        string
	none           string
	sep            string
	explanation    string
	recommendation string
	urgent         string
	source         string
}

var text = map[knowledge.Language]labels{
	knowledge.English: {
		title:          "Risk assessment",
		tier:           "Risk level",
		score:          "Score",
		condition:      "Possible condition",
		factors:        "Matched symptoms",
		none:           "none",
		sep:            ", ",
		explanation:    "Why",
		recommendation: "What to do",
		urgent:         "Seek urgent care now",
		source:         "Assessed by",
	},
	knowledge.Arabic: {
		title:          "تقييم المخاطر",
		tier:           "مستوى الخطورة",
		score:          "الدرجة",
		condition:      "حالة محتملة",
		factors:        "الأعراض المطابقة",
		none:           "لا يوجد",
		sep:            "، ",
		explanation:    "السبب",
		recommendation: "ماذا تفعلين",
		urgent:         "اطلبي الرعاية الطبية العاجلة الآن",
		source:         "مصدر التقييم",
	},
}

// Render formats out as a card. rules resolves condition names and may be
// nil. width bounds the card; zero means unbounded.
func Render(out screening.Outcome, lang knowledge.Language, rules *risk.RuleSet, width int) string {
	l, ok := text[lang]
	if !ok {
		l = text[knowledge.English]
	}
	a := out.Assessment

	var b strings.Builder
	b.WriteString(theme.Title.Render(l.title))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(theme.Label.Render(label + ": "))
		b.WriteString(value)
		b.WriteString("\n")
	}

	row(l.tier, theme.TierBadge(a.RiskTier))
	row(l.score, fmt.Sprintf("%d/%d", a.RiskScore, risk.MaxDisplayScore))
	if id := a.Condition(); id != "" {
		name := id
		if rules != nil {
			name = rules.ConditionName(id, lang)
		}
		row(l.condition, lipgloss.NewStyle().Foreground(theme.TierColor(a.RiskTier)).Bold(true).Render(name))
	}

	factors := l.none
	if len(a.MatchedFactors) > 0 {
		names := make([]string, len(a.MatchedFactors))
		for i, f := range a.MatchedFactors {
			names[i] = f.Phrase
		}
		factors = strings.Join(names, l.sep)
	}
	row(l.factors, factors)

	b.WriteString("\n")
	b.WriteString(theme.Label.Render(l.explanation))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(a.Explanation))
	b.WriteString("\n\n")
	b.WriteString(theme.Label.Render(l.recommendation))
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(a.Recommendation))

	if a.UrgentCareNeeded {
		b.WriteString("\n\n")
		b.WriteString(theme.Invalid.Render("⚠ " + l.urgent))
	}
	if out.Source != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(l.source + ": " + out.Source))
	}

	card := theme.Card.BorderForeground(theme.TierColor(a.RiskTier))
	if width > 0 {
		card = card.Width(width)
	}
	return card.Render(b.String())
}
