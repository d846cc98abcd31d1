package triage

import (
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/router"
	"github.com/abhisek/mamacheck/internal/screen"
	"github.com/abhisek/mamacheck/internal/screening"
	"github.com/abhisek/mamacheck/internal/ui/layout"
	"github.com/abhisek/mamacheck/internal/ui/report"
)

// ResultScreen shows the assessment. The session is discarded when the
// screen is left.
type ResultScreen struct {
	deps      Deps
	sessionID string
	lang      knowledge.Language
	outcome   screening.Outcome
}

var _ screen.Screen = (*ResultScreen)(nil)
var _ screen.KeyHintProvider = (*ResultScreen)(nil)

func NewResult(deps Deps, sessionID string, lang knowledge.Language, out screening.Outcome) *ResultScreen {
	return &ResultScreen{deps: deps, sessionID: sessionID, lang: lang, outcome: out}
}

func (s *ResultScreen) Init() tea.Cmd { return nil }

func (s *ResultScreen) Title() string { return textFor(s.lang).resultTitle }

func (s *ResultScreen) Language() knowledge.Language { return s.lang }

func (s *ResultScreen) KeyHints() []layout.KeyHint {
	t := textFor(s.lang)
	return []layout.KeyHint{
		{Key: "N", Description: t.newScreening},
		{Key: "Q", Description: t.quit},
	}
}

func (s *ResultScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "n", "N":
		_ = s.deps.Sessions.Delete(s.sessionID)
		next := NewIntakeIn(s.deps, s.lang)
		return s, router.Next(next)
	case "q", "Q":
		_ = s.deps.Sessions.Delete(s.sessionID)
		return s, tea.Quit
	}
	return s, nil
}

func (s *ResultScreen) View(width, height int) string {
	card := report.Render(s.outcome, s.lang, s.deps.Service.Rules(), min(width-4, 76))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}
