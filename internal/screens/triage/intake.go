package triage

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/router"
	"github.com/abhisek/mamacheck/internal/screen"
	"github.com/abhisek/mamacheck/internal/session"
	"github.com/abhisek/mamacheck/internal/ui/components"
	"github.com/abhisek/mamacheck/internal/ui/layout"
	"github.com/abhisek/mamacheck/internal/ui/theme"
)

type intakeStep int

const (
	stepLanguage intakeStep = iota
	stepName
	stepAge
	stepWeek
)

// IntakeScreen collects the language and patient details, then opens a
// session and hands over to the questionnaire.
type IntakeScreen struct {
	deps    Deps
	step    intakeStep
	lang    knowledge.Language
	langs   components.Choice[knowledge.Language]
	input   components.TextInput
	patient session.Patient
	errMsg  string
}

var _ screen.Screen = (*IntakeScreen)(nil)
var _ screen.KeyHintProvider = (*IntakeScreen)(nil)

// NewIntake starts with the language menu.
func NewIntake(deps Deps) *IntakeScreen {
	return &IntakeScreen{
		deps: deps,
		step: stepLanguage,
		lang: knowledge.English,
		langs: components.NewChoice(
			components.Option[knowledge.Language]{Label: "English", Detail: "Continue in English", Value: knowledge.English},
			components.Option[knowledge.Language]{Label: "العربية", Detail: "المتابعة بالعربية", Value: knowledge.Arabic},
		),
	}
}

// NewIntakeIn skips the language menu.
func NewIntakeIn(deps Deps, lang knowledge.Language) *IntakeScreen {
	s := NewIntake(deps)
	s.setLanguage(lang)
	return s
}

func (s *IntakeScreen) setLanguage(lang knowledge.Language) {
	s.lang = knowledge.ParseLanguage(string(lang))
	s.step = stepName
	s.input = components.NewTextInput(textFor(s.lang).namePrompt, false, 40)
}

func (s *IntakeScreen) Init() tea.Cmd {
	if s.step == stepLanguage {
		return nil
	}
	return s.input.Init()
}

// Language is English until a language is picked.
func (s *IntakeScreen) Language() knowledge.Language { return s.lang }

func (s *IntakeScreen) Title() string {
	return textFor(s.lang).intakeTitle
}

func (s *IntakeScreen) KeyHints() []layout.KeyHint {
	t := textFor(s.lang)
	if s.step == stepLanguage {
		return []layout.KeyHint{
			{Key: "↑↓", Description: t.chooseLang},
			{Key: "Enter", Description: t.submit},
			{Key: "Ctrl+C", Description: t.quit},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: t.submit},
		{Key: "Ctrl+C", Description: t.quit},
	}
}

func (s *IntakeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if s.step == stepLanguage {
		var picked bool
		s.langs, picked = s.langs.Update(msg)
		if !picked {
			return s, nil
		}
		s.setLanguage(s.langs.Value())
		return s, s.input.Init()
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		return s.submit()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *IntakeScreen) submit() (screen.Screen, tea.Cmd) {
	t := textFor(s.lang)
	s.errMsg = ""

	switch s.step {
	case stepName:
		name := strings.TrimSpace(s.input.Value())
		if name == "" {
			s.errMsg = t.emptyName
			return s, nil
		}
		s.patient.Name = name
		s.step = stepAge
		s.input = components.NewTextInput(t.agePrompt, true, 2)
		return s, s.input.Init()

	case stepAge:
		age, err := s.input.NumericValue()
		if err != nil || age < session.MinAge || age > session.MaxAge {
			s.errMsg = fmt.Sprintf(t.badAge, session.MinAge, session.MaxAge)
			return s, nil
		}
		s.patient.Age = age
		s.step = stepWeek
		s.input = components.NewTextInput(t.weekPrompt, true, 2)
		return s, s.input.Init()

	case stepWeek:
		week, err := s.input.NumericValue()
		if err != nil || week < session.MinWeek || week > session.MaxWeek {
			s.errMsg = fmt.Sprintf(t.badWeek, session.MinWeek, session.MaxWeek)
			return s, nil
		}
		s.patient.GestationalWeek = week

		sess := s.deps.Sessions.Create(s.lang)
		if _, err := s.deps.Sessions.SetPatient(sess.ID, s.patient); err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		next := NewQuestionnaire(s.deps, sess.ID, s.lang)
		return s, router.Next(next)
	}
	return s, nil
}

func (s *IntakeScreen) View(width, height int) string {
	t := textFor(s.lang)
	var b strings.Builder

	if s.step == stepLanguage {
		b.WriteString(theme.Title.Render(t.chooseLang))
		b.WriteString("\n\n")
		b.WriteString(s.langs.View())
	} else {
		prompt := map[intakeStep]string{stepName: t.namePrompt, stepAge: t.agePrompt, stepWeek: t.weekPrompt}[s.step]
		b.WriteString(theme.Title.Render(prompt))
		b.WriteString("\n\n")
		b.WriteString(s.input.View())
		if s.errMsg != "" {
			b.WriteString("\n\n")
			b.WriteString(theme.Invalid.Render(s.errMsg))
		}
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, b.String())
}
