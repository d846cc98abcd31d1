// Package router drives the screening flow from one screen to the next.
package router

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mamacheck/internal/screen"
)

// NextScreenMsg moves the flow to Screen. Answers already given are held by
// the session, so there is no way back to an earlier step.
type NextScreenMsg struct {
	Screen screen.Screen
}

// Next returns a command that advances the flow to s.
func Next(s screen.Screen) tea.Cmd {
	return func() tea.Msg { return NextScreenMsg{Screen: s} }
}

// Router holds the active screen and the titles of the screens it left.
type Router struct {
	active  screen.Screen
	visited []string
}

func New(initial screen.Screen) *Router {
	return &Router{active: initial}
}

// Advance replaces the active screen with s and runs its Init.
func (r *Router) Advance(s screen.Screen) tea.Cmd {
	if r.active != nil {
		r.visited = append(r.visited, r.active.Title())
	}
	r.active = s
	return s.Init()
}

func (r *Router) Active() screen.Screen {
	return r.active
}

// Visited lists the titles of earlier screens, oldest first.
func (r *Router) Visited() []string {
	return r.visited
}

// Update handles NextScreenMsg and forwards everything else to the active
// screen.
func (r *Router) Update(msg tea.Msg) tea.Cmd {
	if next, ok := msg.(NextScreenMsg); ok {
		return r.Advance(next.Screen)
	}
	if r.active == nil {
		return nil
	}
	var cmd tea.Cmd
	r.active, cmd = r.active.Update(msg)
	return cmd
}

func (r *Router) View(width, height int) string {
	if r.active == nil {
		return ""
	}
	return r.active.View(width, height)
}
