package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mamacheck/internal/ui/theme"
)

// Option is one entry of a Choice list.
type Option[T any] struct {
	Label  string
	Detail string
	Value  T
}

// Choice is a vertical single-select list. Options can be picked with the
// arrow keys and Enter, or directly by their number.
type Choice[T any] struct {
	options []Option[T]
	cursor  int
}

// NewChoice creates a Choice with the cursor on the first option.
func NewChoice[T any](options ...Option[T]) Choice[T] {
	return Choice[T]{options: options}
}

// Update moves the cursor. It reports true when an option was picked.
func (c Choice[T]) Update(msg tea.Msg) (Choice[T], bool) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || len(c.options) == 0 {
		return c, false
	}

	switch s := key.String(); s {
	case "up", "k", "shift+tab":
		c.cursor = (c.cursor + len(c.options) - 1) % len(c.options)
	case "down", "j", "tab":
		c.cursor = (c.cursor + 1) % len(c.options)
	case "enter":
		return c, true
	default:
		var n int
		if _, err := fmt.Sscanf(s, "%d", &n); err == nil && n >= 1 && n <= len(c.options) {
			c.cursor = n - 1
			return c, true
		}
	}
	return c, false
}

// Value returns the option under the cursor.
func (c Choice[T]) Value() T {
	var zero T
	if len(c.options) == 0 {
		return zero
	}
	return c.options[c.cursor].Value
}

// Cursor returns the index under the cursor.
func (c Choice[T]) Cursor() int { return c.cursor }

func (c Choice[T]) View() string {
	var b strings.Builder
	for i, o := range c.options {
		line := fmt.Sprintf("%d  %s", i+1, o.Label)
		if i == c.cursor {
			b.WriteString(theme.Selected.Render("▸ " + line))
		} else {
			b.WriteString(theme.Unselected.Render("  " + line))
		}
		if o.Detail != "" {
			b.WriteString("  ")
			b.WriteString(theme.Hint.Render(o.Detail))
		}
		b.WriteString("\n")
	}
	return b.String()
}
