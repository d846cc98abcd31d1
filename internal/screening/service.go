package screening

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/llm"
	"github.com/abhisek/mamacheck/internal/metrics"
	"github.com/abhisek/mamacheck/internal/retrieval"
	"github.com/abhisek/mamacheck/internal/risk"
)

// Rejection reasons recorded for discarded generator results.
const (
	reasonEmpty       = "empty"
	reasonInvalid     = "invalid_tier"
	reasonUnderTriage = "under_triage"
)

// Service coordinates generative collaborators with the rule engine. It is
// safe for concurrent use once built.
type Service struct {
	assessor    *risk.Assessor
	retriever   *retrieval.Retriever
	assessors   []AssessmentGenerator
	questioners []QuestionGenerator
	metrics     *metrics.Metrics
	logger      logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithAssessmentGenerators appends generators tried before the rule engine.
func WithAssessmentGenerators(gens ...AssessmentGenerator) Option {
	return func(s *Service) { s.assessors = append(s.assessors, gens...) }
}

// WithQuestionGenerators appends generators tried before the question bank.
func WithQuestionGenerators(gens ...QuestionGenerator) Option {
	return func(s *Service) { s.questioners = append(s.questioners, gens...) }
}

// WithLLM registers one LLMGenerator as both assessment and question
// generator. A nil provider adds nothing.
func WithLLM(provider llm.Provider, cfg GeneratorConfig) Option {
	return func(s *Service) {
		if provider == nil {
			return
		}
		g := NewLLMGenerator(provider, s.retriever, s.assessor.Rules(), cfg)
		s.assessors = append(s.assessors, g)
		s.questioners = append(s.questioners, g)
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a screening service. Nil collaborators mean the
// embedded rule set and corpus.
func NewService(assessor *risk.Assessor, retriever *retrieval.Retriever, opts ...Option) *Service {
	if assessor == nil {
		assessor = risk.NewAssessor(nil)
	}
	if retriever == nil {
		retriever = retrieval.New(nil)
	}
	s := &Service{
		assessor:  assessor,
		retriever: retriever,
		logger:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Rules returns the rule set used as the safety floor.
func (s *Service) Rules() *risk.RuleSet { return s.assessor.Rules() }

// Retriever returns the retriever used for grounding and follow-ups.
func (s *Service) Retriever() *retrieval.Retriever { return s.retriever }

// Generative reports whether any generator is registered.
func (s *Service) Generative() bool {
	return len(s.assessors) > 0 || len(s.questioners) > 0
}

// Assess tries each generator in order and returns the first acceptable
// result. A generated tier below the rule engine's tier is never accepted.
// Assess always returns an Outcome: the rule engine result is the last resort.
func (s *Service) Assess(ctx context.Context, in Input) Outcome {
	start := time.Now()
	core := s.assessor.Assess(in.Answers, in.Language)

	out := Outcome{Assessment: core, Source: SourceRules}
	for _, g := range s.assessors {
		if ctx.Err() != nil {
			break
		}
		cand, err := g.TryAssess(ctx, in)
		if err != nil || cand == nil {
			reason := failureReason(err)
			s.reject(g.Name(), reason, err)
			continue
		}
		accepted, reason := s.normalize(*cand, core, in.Language)
		if reason != "" {
			s.reject(g.Name(), reason, nil)
			continue
		}
		out = Outcome{Assessment: accepted, Source: g.Name()}
		break
	}

	s.metrics.ObserveAssessment(out.Source, string(out.Assessment.RiskTier), string(in.Language), time.Since(start))
	s.logger.WithFields(logrus.Fields{
		"source":    out.Source,
		"tier":      out.Assessment.RiskTier,
		"condition": out.Assessment.Condition(),
	}).Debug("assessment produced")
	return out
}

// normalize enforces the Assessment invariants on a generated candidate and
// returns a non-empty reason when it must be rejected.
func (s *Service) normalize(c, core risk.Assessment, lang knowledge.Language) (risk.Assessment, string) {
	if !c.RiskTier.Valid() {
		return c, reasonInvalid
	}
	if c.RiskTier.Rank() < core.RiskTier.Rank() {
		return c, reasonUnderTriage
	}

	c.RiskScore = min(max(c.RiskScore, 0), risk.MaxDisplayScore)

	factors := slices.Clone(c.MatchedFactors)
	slices.SortStableFunc(factors, func(a, b risk.Factor) int { return b.Weight - a.Weight })
	if len(factors) > risk.MaxMatchedFactors {
		factors = factors[:risk.MaxMatchedFactors]
	}
	if factors == nil {
		factors = []risk.Factor{}
	}
	c.MatchedFactors = factors

	c.UrgentCareNeeded = c.RiskTier == knowledge.TierHigh

	switch {
	case core.DetectedCondition != nil:
		id := *core.DetectedCondition
		c.DetectedCondition = &id
	case c.DetectedCondition != nil && !s.assessor.Rules().HasPattern(*c.DetectedCondition):
		c.DetectedCondition = nil
	}

	advice := s.assessor.Rules().Advice(c.RiskTier, lang)
	if c.Explanation == "" {
		c.Explanation = advice.Explanation
	}
	if c.Recommendation == "" {
		c.Recommendation = advice.Recommendation
	}
	return c, ""
}

func (s *Service) reject(generator, reason string, err error) {
	s.metrics.GeneratorRejection(generator, reason)
	entry := s.logger.WithFields(logrus.Fields{"generator": generator, "reason": reason})
	if err != nil {
		entry = entry.WithError(err)
	}
	entry.Warn("generator result discarded")
}

// NextQuestions returns the next screening questions. Without a generator
// result it returns the question bank's fallback questions not yet asked,
// followed by contextual follow-ups.
func (s *Service) NextQuestions(ctx context.Context, in Input) Questions {
	for _, g := range s.questioners {
		if ctx.Err() != nil {
			break
		}
		qs, err := g.TryQuestions(ctx, in)
		qs = freshQuestions(qs, in.Asked)
		if err != nil || len(qs) == 0 {
			reason := failureReason(err)
			s.reject(g.Name(), reason, err)
			continue
		}
		s.metrics.QuestionBatch(g.Name())
		return Questions{Questions: qs, Source: g.Name()}
	}

	bank := s.retriever.Corpus().Questions(in.Language)
	candidates := slices.Concat(bank.Fallback, s.retriever.FollowUps(in.Answers, in.Language, 0))
	s.metrics.QuestionBatch(SourceQuestionBank)
	return Questions{Questions: freshQuestions(candidates, in.Asked), Source: SourceQuestionBank}
}

// failureReason labels a generator that produced nothing. Provider errors
// are labelled by their llm.Kind.
func failureReason(err error) string {
	if err == nil || errors.Is(err, ErrNoResult) {
		return reasonEmpty
	}
	return string(llm.Classify(err))
}
