// Package app hosts the terminal screening program.
package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/router"
	"github.com/abhisek/mamacheck/internal/screen"
	"github.com/abhisek/mamacheck/internal/screens/triage"
	"github.com/abhisek/mamacheck/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

// newAppModel starts at the intake screen. An empty lang shows the
// language menu first.
func newAppModel(deps triage.Deps, lang knowledge.Language) AppModel {
	var first screen.Screen
	if lang == "" {
		first = triage.NewIntake(deps)
	} else {
		first = triage.NewIntakeIn(deps, lang)
	}
	return AppModel{router: router.New(first)}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render composes the frame; empty until the first resize.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.TooSmall(m.width, m.height)
	}

	var frame layout.Frame
	if active := m.router.Active(); active != nil {
		frame.Title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			frame.Status = sp.Status()
		}
		if kp, ok := active.(screen.KeyHintProvider); ok {
			frame.Hints = kp.KeyHints()
		}
		if lp, ok := active.(screen.LanguageProvider); ok {
			frame.RTL = lp.Language() == knowledge.Arabic
		}
	}
	if frame.Hints == nil {
		frame.Hints = []layout.KeyHint{{Key: "Ctrl+C", Description: "Quit"}}
	}
	return frame.Render(m.width, m.height, m.router.View)
}

// Run starts the screening program and blocks until it exits.
func Run(deps triage.Deps, lang knowledge.Language) error {
	_, err := tea.NewProgram(newAppModel(deps, lang)).Run()
	return err
}
