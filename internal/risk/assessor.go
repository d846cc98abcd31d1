// Package risk implements the deterministic pregnancy symptom triage core:
// weighted keyword classification, condition pattern detection and
// tier-based recommendations, all driven by an immutable RuleSet.
//
// Everything here is pure and CPU-bound. An Assessor can be shared by any
// number of goroutines and is the unconditional fallback when generative
// assessment is unavailable.
package risk

import (
	"slices"
	"strings"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/textnorm"
)

// Assessor orchestrates classification, pattern detection and mapping.
type Assessor struct {
	rules      *RuleSet
	classifier *KeywordClassifier
	detector   *PatternDetector
	mapper     *RecommendationMapper
}

// NewAssessor creates an Assessor. A nil rule set means DefaultRuleSet.
func NewAssessor(rules *RuleSet) *Assessor {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	return &Assessor{
		rules:      rules,
		classifier: NewKeywordClassifier(rules),
		detector:   NewPatternDetector(rules),
		mapper:     NewRecommendationMapper(rules),
	}
}

// Rules returns the rule set the assessor was built with.
func (a *Assessor) Rules() *RuleSet { return a.rules }

// Assess classifies the answers. It is total: empty answers yield Low and an
// unsupported language is assessed with the English rules.
func (a *Assessor) Assess(answers []string, lang knowledge.Language) Assessment {
	s := newScan(textnorm.Join(answers))
	score := a.classifier.score(s, lang)
	pattern := a.detector.detect(s, lang)

	tier := decideTier(score, pattern)
	out := Assessment{
		RiskTier:       tier,
		RiskScore:      score.Display(),
		MatchedFactors: topFactors(score.Factors),
	}

	if pattern != nil {
		id := pattern.ID
		out.DetectedCondition = &id
		out.Explanation = pattern.Advice.Explanation
		out.Recommendation = pattern.Advice.Recommendation
		out.UrgentCareNeeded = true
		return out
	}

	rec := a.mapper.Recommend(tier, lang)
	out.Explanation = a.explain(rec.Explanation, out.MatchedFactors, lang)
	out.Recommendation = rec.Recommendation
	out.UrgentCareNeeded = rec.UrgentCareNeeded
	return out
}

// decideTier applies the override order: an active pattern, then a
// high-risk phrase, then the accumulated score.
func decideTier(score RiskScore, pattern *Pattern) knowledge.Tier {
	switch {
	case pattern != nil:
		return knowledge.TierHigh
	case score.HighRiskFound && score.Value >= 3:
		return knowledge.TierHigh
	case score.Value >= 2:
		return knowledge.TierMedium
	default:
		return knowledge.TierLow
	}
}

// topFactors orders factors by weight, keeping detection order within a
// weight, and keeps at most MaxMatchedFactors.
func topFactors(factors []Factor) []Factor {
	out := slices.Clone(factors)
	slices.SortStableFunc(out, func(a, b Factor) int { return b.Weight - a.Weight })
	if len(out) > MaxMatchedFactors {
		out = out[:MaxMatchedFactors]
	}
	if out == nil {
		out = []Factor{}
	}
	return out
}

func (a *Assessor) explain(base string, factors []Factor, lang knowledge.Language) string {
	label := a.rules.table(lang).factorsLabel
	if len(factors) == 0 || label == "" {
		return base
	}
	sep := ", "
	if lang == knowledge.Arabic {
		sep = "، "
	}
	names := make([]string, len(factors))
	for i, f := range factors {
		names[i] = f.Phrase
	}
	return base + " " + label + " " + strings.Join(names, sep) + "."
}
