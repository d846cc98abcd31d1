package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/screening"
)

var (
	ErrNotFound       = errors.New("session not found")
	ErrInvalidPatient = errors.New("invalid patient info")
	ErrEmptyAnswer    = errors.New("answer is empty")
)

// Patient bounds.
const (
	MinAge  = 12
	MaxAge  = 60
	MinWeek = 1
	MaxWeek = 42
)

// Patient is the intake information collected before screening.
type Patient struct {
	Name            string `json:"name"`
	Age             int    `json:"age"`
	GestationalWeek int    `json:"gestationalWeek"`
}

// Validate checks the intake ranges.
func (p Patient) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPatient)
	}
	if p.Age < MinAge || p.Age > MaxAge {
		return fmt.Errorf("%w: age must be between %d and %d", ErrInvalidPatient, MinAge, MaxAge)
	}
	if p.GestationalWeek < MinWeek || p.GestationalWeek > MaxWeek {
		return fmt.Errorf("%w: gestational week must be between %d and %d", ErrInvalidPatient, MinWeek, MaxWeek)
	}
	return nil
}

// Phase is where a session is in the screening flow.
type Phase string

const (
	PhaseIntake    Phase = "intake"    // waiting for patient info
	PhaseQuestions Phase = "questions" // serving questions
	PhaseComplete  Phase = "complete"  // question cap reached
)

// Session is one patient's screening. Values returned by the Manager are
// copies; mutate sessions only through the Manager.
type Session struct {
	ID       string             `json:"id"`
	Language knowledge.Language `json:"language"`
	Patient  *Patient           `json:"patient"`
	Phase    Phase              `json:"phase"`

	// Asked lists every question served; Answers every answer received.
	Asked   []string `json:"asked"`
	Answers []string `json:"answers"`

	// Pending is the served question still waiting for an answer.
	Pending string `json:"pending,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s *Session) clone() Session {
	c := *s
	c.Asked = slices.Clone(s.Asked)
	c.Answers = slices.Clone(s.Answers)
	if s.Patient != nil {
		p := *s.Patient
		c.Patient = &p
	}
	return c
}

// Input converts the session to a screening input.
func (s Session) Input() screening.Input {
	in := screening.Input{
		Answers:  slices.Clone(s.Answers),
		Language: s.Language,
		Asked:    slices.Clone(s.Asked),
	}
	if s.Patient != nil {
		in.Age = s.Patient.Age
		in.GestationalWeek = s.Patient.GestationalWeek
	}
	return in
}
