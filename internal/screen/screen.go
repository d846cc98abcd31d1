package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/ui/layout"
)

// Screen is one step of the terminal screening flow.
type Screen interface {
	Init() tea.Cmd

	// Update handles messages and returns the updated screen.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content, excluding header and footer.
	View(width, height int) string

	// Title is shown in the header.
	Title() string
}

// KeyHintProvider is implemented by screens with their own footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// StatusProvider is implemented by screens that show a status in the
// header, such as question progress.
type StatusProvider interface {
	Status() string
}

// LanguageProvider is implemented by screens bound to a session language.
// Arabic screens get a right-to-left frame.
type LanguageProvider interface {
	Language() knowledge.Language
}
