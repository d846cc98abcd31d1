// Package screening orchestrates generative collaborators around the
// deterministic risk core. Generators are tried in order; the rule engine
// answers whenever none of them produces an acceptable result.
package screening

import (
	"context"
	"errors"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/risk"
)

// ErrNoResult is returned by a generator that declined to answer.
var ErrNoResult = errors.New("generator produced no result")

// Sources reported in Outcome.Source when no generator was used.
const (
	SourceRules        = "rules"
	SourceQuestionBank = "question_bank"
)

// Input is everything a generator may use. Age and GestationalWeek are zero
// when unknown.
type Input struct {
	Answers         []string
	Language        knowledge.Language
	Age             int
	GestationalWeek int
	// Asked lists questions already put to the patient.
	Asked []string
}

// AssessmentGenerator produces a candidate assessment. A nil result or an
// error means "no result" and the next generator is tried.
type AssessmentGenerator interface {
	Name() string
	TryAssess(ctx context.Context, in Input) (*risk.Assessment, error)
}

// QuestionGenerator produces the next screening questions.
type QuestionGenerator interface {
	Name() string
	TryQuestions(ctx context.Context, in Input) ([]string, error)
}

// Outcome is an accepted assessment and the name of whoever produced it.
type Outcome struct {
	Assessment risk.Assessment `json:"assessment"`
	Source     string          `json:"source"`
}

// Questions is a batch of screening questions and their source.
type Questions struct {
	Questions []string `json:"questions"`
	Source    string   `json:"source"`
}
