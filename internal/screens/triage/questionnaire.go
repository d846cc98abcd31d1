package triage

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/router"
	"github.com/abhisek/mamacheck/internal/screen"
	"github.com/abhisek/mamacheck/internal/ui/components"
	"github.com/abhisek/mamacheck/internal/ui/layout"
	"github.com/abhisek/mamacheck/internal/ui/theme"
)

// QuestionnaireScreen serves questions one at a time and records answers.
// Esc ends the screening early with the answers given so far.
type QuestionnaireScreen struct {
	deps      Deps
	sessionID string
	lang      knowledge.Language

	question string
	asked    int
	loading  bool
	input    components.TextInput
	errMsg   string
}

var _ screen.Screen = (*QuestionnaireScreen)(nil)
var _ screen.KeyHintProvider = (*QuestionnaireScreen)(nil)
var _ screen.StatusProvider = (*QuestionnaireScreen)(nil)

func NewQuestionnaire(deps Deps, sessionID string, lang knowledge.Language) *QuestionnaireScreen {
	return &QuestionnaireScreen{
		deps:      deps,
		sessionID: sessionID,
		lang:      lang,
		loading:   true,
		input:     components.NewTextInput(textFor(lang).answerHint, false, 200),
	}
}

func (s *QuestionnaireScreen) Init() tea.Cmd {
	return tea.Batch(s.deps.fetchQuestion(s.sessionID), s.input.Init())
}

func (s *QuestionnaireScreen) Language() knowledge.Language { return s.lang }

func (s *QuestionnaireScreen) Title() string {
	return textFor(s.lang).screenTitle
}

func (s *QuestionnaireScreen) Status() string {
	return strings.ToUpper(string(s.lang)) + "  " +
		fmt.Sprintf(textFor(s.lang).questionCount, s.asked, s.deps.Sessions.MaxQuestions())
}

func (s *QuestionnaireScreen) KeyHints() []layout.KeyHint {
	t := textFor(s.lang)
	return []layout.KeyHint{
		{Key: "Enter", Description: t.submit},
		{Key: "Esc", Description: t.finishEarly},
		{Key: "Ctrl+C", Description: t.quit},
	}
}

func (s *QuestionnaireScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionMsg:
		return s.handleQuestion(msg)

	case assessedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		next := NewResult(s.deps, s.sessionID, s.lang, msg.Outcome)
		return s, router.Next(next)

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			s.loading = true
			return s, s.deps.assess(s.sessionID)
		case "enter":
			if s.loading {
				return s, nil
			}
			return s.submit()
		}
	}

	if s.loading {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *QuestionnaireScreen) handleQuestion(msg questionMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.loading = false
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	if msg.Done {
		return s, s.deps.assess(s.sessionID)
	}
	if sess, err := s.deps.Sessions.Get(s.sessionID); err == nil {
		s.asked = len(sess.Asked)
	}
	s.question = msg.Question
	s.loading = false
	s.input.Reset()
	return s, s.input.Focus()
}

func (s *QuestionnaireScreen) submit() (screen.Screen, tea.Cmd) {
	s.errMsg = ""
	if _, err := s.deps.Sessions.Answer(s.sessionID, s.input.Value()); err != nil {
		s.errMsg = textFor(s.lang).emptyAnswer
		return s, nil
	}
	s.loading = true
	return s, s.deps.fetchQuestion(s.sessionID)
}

func (s *QuestionnaireScreen) View(width, height int) string {
	t := textFor(s.lang)
	var b strings.Builder

	barWidth := width - 8
	if layout.IsCompactWidth(width) {
		barWidth = width / 2
	}
	b.WriteString(components.QuestionProgress(s.asked, s.deps.Sessions.MaxQuestions(), barWidth))
	b.WriteString("\n\n")

	if s.loading {
		b.WriteString(theme.Hint.Render(t.thinking))
	} else {
		b.WriteString(lipgloss.NewStyle().Width(width - 8).Bold(true).Foreground(theme.Text).Render(s.question))
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Invalid.Render(s.errMsg))
	}

	return lipgloss.NewStyle().Padding(1, 4).Width(width).Height(height).Render(b.String())
}
