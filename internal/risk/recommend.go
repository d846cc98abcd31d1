package risk

import "github.com/abhisek/mamacheck/internal/knowledge"

// Recommendation is the tier-level guidance attached to an Assessment.
type Recommendation struct {
	Explanation      string
	Recommendation   string
	UrgentCareNeeded bool
}

// RecommendationMapper maps a tier and language to guidance text.
type RecommendationMapper struct {
	rules *RuleSet
}

// NewRecommendationMapper creates a mapper over rules.
func NewRecommendationMapper(rules *RuleSet) *RecommendationMapper {
	return &RecommendationMapper{rules: rules}
}

// Recommend returns the guidance for tier. Urgent care is needed exactly
// when the tier is High.
func (m *RecommendationMapper) Recommend(tier knowledge.Tier, lang knowledge.Language) Recommendation {
	adv := m.rules.Advice(tier, lang)
	return Recommendation{
		Explanation:      adv.Explanation,
		Recommendation:   adv.Recommendation,
		UrgentCareNeeded: tier == knowledge.TierHigh,
	}
}
