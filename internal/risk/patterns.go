package risk

import (
	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/textnorm"
)

// Pattern is a named clinical signature for one language. It is active when
// at least MinMatches of its signs are present in the answers. A sign is a
// group of synonymous trigger phrases and counts once.
type Pattern struct {
	ID         string
	Name       string
	MinMatches int
	Advice     Advice

	signs   [][]phrase
	shadows []string
}

// Signs returns the authored trigger phrases grouped by sign.
func (p *Pattern) Signs() [][]string {
	out := make([][]string, len(p.signs))
	for i, sign := range p.signs {
		for _, ph := range sign {
			out[i] = append(out[i], ph.text)
		}
	}
	return out
}

// matchCount returns how many signs have at least one surviving trigger.
func (p *Pattern) matchCount(s *scan) int {
	n := 0
	for _, sign := range p.signs {
		for _, ph := range sign {
			if s.survives(ph.folded, p.shadows) {
				n++
				break
			}
		}
	}
	return n
}

// PatternDetector evaluates condition patterns in priority order.
type PatternDetector struct {
	rules *RuleSet
}

// NewPatternDetector creates a detector over rules.
func NewPatternDetector(rules *RuleSet) *PatternDetector {
	return &PatternDetector{rules: rules}
}

// Detect returns the first active pattern, or nil.
func (d *PatternDetector) Detect(answers []string, lang knowledge.Language) *Pattern {
	return d.detect(newScan(textnorm.Join(answers)), lang)
}

func (d *PatternDetector) detect(s *scan, lang knowledge.Language) *Pattern {
	if s.text == "" {
		return nil
	}
	for _, p := range d.rules.table(lang).patterns {
		if p.matchCount(s) >= p.MinMatches {
			return p
		}
	}
	return nil
}
