// Package triage holds the terminal screening flow: intake, questions and
// the result report.
package triage

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mamacheck/internal/screening"
	"github.com/abhisek/mamacheck/internal/session"
)

// Deps are shared by every screen in the flow.
type Deps struct {
	Service  *screening.Service
	Sessions *session.Manager
}

// questionMsg carries the result of a NextQuestion call.
type questionMsg struct {
	Question string
	Done     bool
	Err      error
}

// assessedMsg carries the final assessment.
type assessedMsg struct {
	Outcome screening.Outcome
	Err     error
}

func (d Deps) fetchQuestion(id string) tea.Cmd {
	return func() tea.Msg {
		q, done, err := d.Sessions.NextQuestion(context.Background(), id, d.Service)
		return questionMsg{Question: q, Done: done, Err: err}
	}
}

func (d Deps) assess(id string) tea.Cmd {
	return func() tea.Msg {
		sess, err := d.Sessions.Get(id)
		if err != nil {
			return assessedMsg{Err: err}
		}
		return assessedMsg{Outcome: d.Service.Assess(context.Background(), sess.Input())}
	}
}
