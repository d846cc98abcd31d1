package components

import (
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// TextInput is a single-line prompt on top of bubbles/textinput. A numeric
// input drops typed characters other than digits. An optional check
// validates the value on submit.
type TextInput struct {
	model   textinput.Model
	numeric bool
	check   func(value string) error
}

// NewTextInput creates a focused input. limit caps the number of
// characters; zero means no cap.
func NewTextInput(placeholder string, numeric bool, limit int) TextInput {
	m := textinput.New()
	m.Placeholder = placeholder
	m.Prompt = "› "
	if limit > 0 {
		m.CharLimit = limit
	}
	m.Focus()
	return TextInput{model: m, numeric: numeric}
}

// WithCheck sets the validation run by Check.
func (t TextInput) WithCheck(check func(value string) error) TextInput {
	t.check = check
	return t
}

func (t TextInput) Init() tea.Cmd {
	return t.model.Focus()
}

func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok && t.numeric && key.Text != "" {
		if strings.IndexFunc(key.Text, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return t, nil
		}
	}
	var cmd tea.Cmd
	t.model, cmd = t.model.Update(msg)
	return t, cmd
}

func (t TextInput) View() string {
	return t.model.View()
}

// Value returns the input with surrounding whitespace removed.
func (t TextInput) Value() string {
	return strings.TrimSpace(t.model.Value())
}

// NumericValue parses the value as an integer.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Value())
}

// Check runs the validation set by WithCheck against the current value.
func (t TextInput) Check() error {
	if t.check == nil {
		return nil
	}
	return t.check(t.Value())
}

// Reset clears the value.
func (t *TextInput) Reset() {
	t.model.SetValue("")
}

// Focus focuses the input and returns the cursor blink command.
func (t *TextInput) Focus() tea.Cmd {
	return t.model.Focus()
}
