package risk

import (
	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/textnorm"
)

// KeywordClassifier scores answers against the weighted keyword bands.
type KeywordClassifier struct {
	rules *RuleSet
}

// NewKeywordClassifier creates a classifier over rules.
func NewKeywordClassifier(rules *RuleSet) *KeywordClassifier {
	return &KeywordClassifier{rules: rules}
}

// Score scans the high band first. Medium and low phrases are only scanned
// when no high-risk phrase matched, so that a high-risk finding is never
// diluted by lower-tier noise.
func (c *KeywordClassifier) Score(answers []string, lang knowledge.Language) RiskScore {
	return c.score(newScan(textnorm.Join(answers)), lang)
}

func (c *KeywordClassifier) score(s *scan, lang knowledge.Language) RiskScore {
	t := c.rules.table(lang)
	var rs RiskScore
	if s.text == "" {
		return rs
	}

	seen := make(map[string]bool)
	collect := func(b Band) {
		for _, p := range t.bands[b] {
			if seen[p.folded] || !s.survives(p.folded, t.shadows) {
				continue
			}
			seen[p.folded] = true
			rs.Value += b.Weight()
			rs.Factors = append(rs.Factors, Factor{Phrase: p.text, Band: b, Weight: b.Weight()})
		}
	}

	collect(BandHigh)
	rs.HighRiskFound = len(rs.Factors) > 0
	if !rs.HighRiskFound {
		collect(BandMedium)
		collect(BandLow)
	}
	return rs
}
