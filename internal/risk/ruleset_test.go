package risk

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalRules = `
version: v1.1.0
languages:
  en:
    high: [bleeding]
    medium: [nausea]
    low: [heartburn]
    tiers:
      High: {explanation: h, recommendation: go now}
      Medium: {explanation: m, recommendation: call}
      Low: {explanation: l, recommendation: rest}
patterns:
  - id: combo
    signs:
      en:
        - [bleeding]
        - [nausea]
    recommendation:
      en: act
`

func TestDefaultRuleSet(t *testing.T) {
	rs := DefaultRuleSet()
	assert.Equal(t, "v1.0.0", rs.Version())

	var ids []string
	for _, p := range rs.Patterns(knowledge.English) {
		ids = append(ids, p.ID)
		assert.Equal(t, DefaultMinMatches, p.MinMatches)
		assert.NotEmpty(t, p.Advice.Recommendation)
	}
	assert.Equal(t, []string{"ectopic", "placental_abruption", "preeclampsia", "preterm_labor", "hyperemesis"}, ids)

	for _, lang := range knowledge.Languages {
		for _, b := range []Band{BandHigh, BandMedium, BandLow, BandNeutral} {
			assert.NotEmpty(t, rs.Phrases(lang, b), "%s %s", lang, b)
		}
		for _, p := range rs.Patterns(lang) {
			assert.GreaterOrEqual(t, len(p.Signs()), p.MinMatches)
		}
	}
}

func TestParseRuleSet_Minimal(t *testing.T) {
	rs, err := ParseRuleSet([]byte(minimalRules))
	require.NoError(t, err)

	// Arabic falls back to the English table.
	assert.Equal(t, []string{"bleeding"}, rs.Phrases(knowledge.Arabic, BandHigh))
	assert.Equal(t, "rest", rs.Advice(knowledge.TierLow, knowledge.Arabic).Recommendation)

	a := NewAssessor(rs)
	got := a.Assess([]string{"Bleeding", "nausea"}, knowledge.English)
	assert.Equal(t, "combo", got.Condition())
	assert.Equal(t, "act", got.Recommendation)

	got = a.Assess([]string{"heartburn"}, knowledge.English)
	assert.Equal(t, knowledge.TierLow, got.RiskTier)
	assert.Equal(t, "l", got.Explanation)
}

func TestParseRuleSet_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "version: [\n"},
		{"bad version", "version: 1.0\nlanguages:\n  en:\n    high: [a]\n"},
		{"no english", "version: v1.0.0\nlanguages:\n  ar:\n    high: [نزيف]\n"},
		{"unsupported language", `
version: v1.0.0
languages:
  en:
    high: [a]
    tiers: {High: {recommendation: x}, Medium: {recommendation: y}, Low: {recommendation: z}}
  fr:
    high: [b]
`},
		{"overlapping bands", `
version: v1.0.0
languages:
  en:
    high: [bleeding]
    medium: [Bleeding]
    tiers: {High: {recommendation: x}, Medium: {recommendation: y}, Low: {recommendation: z}}
`},
		{"empty high band", `
version: v1.0.0
languages:
  en:
    medium: [nausea]
    tiers: {High: {recommendation: x}, Medium: {recommendation: y}, Low: {recommendation: z}}
`},
		{"missing tier advice", `
version: v1.0.0
languages:
  en:
    high: [bleeding]
    tiers: {High: {recommendation: x}}
`},
		{"too few signs", `
version: v1.0.0
languages:
  en:
    high: [bleeding]
    tiers: {High: {recommendation: x}, Medium: {recommendation: y}, Low: {recommendation: z}}
patterns:
  - id: p
    min_matches: 3
    signs: {en: [[a], [b]]}
    recommendation: {en: r}
`},
		{"duplicate pattern", `
version: v1.0.0
languages:
  en:
    high: [bleeding]
    tiers: {High: {recommendation: x}, Medium: {recommendation: y}, Low: {recommendation: z}}
patterns:
  - id: p
    signs: {en: [[a], [b]]}
    recommendation: {en: r}
  - id: p
    signs: {en: [[a], [b]]}
    recommendation: {en: r}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRuleSet([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestCheckCompatible(t *testing.T) {
	minor, err := ParseRuleSet([]byte(minimalRules))
	require.NoError(t, err)
	assert.NoError(t, CheckCompatible(DefaultRuleSet(), minor))

	major, err := ParseRuleSet([]byte(`
version: v2.0.0
languages:
  en:
    high: [bleeding]
    tiers: {High: {recommendation: x}, Medium: {recommendation: y}, Low: {recommendation: z}}
`))
	require.NoError(t, err)
	err = CheckCompatible(DefaultRuleSet(), major)
	assert.True(t, errors.Is(err, ErrIncompatibleRules), "got %v", err)
}

func TestScan_OverlappingOccurrences(t *testing.T) {
	s := newScan("aaa")
	assert.Len(t, s.find("aa"), 2)

	s = newScan("severe headache then headache again")
	assert.True(t, s.survives("headache", []string{"severe headache"}))

	s = newScan("severe headache")
	assert.False(t, s.survives("headache", []string{"severe headache"}))
	assert.True(t, s.survives("severe headache", []string{"severe headache"}))
}

func TestBandOfAndHasPattern(t *testing.T) {
	rs := DefaultRuleSet()

	b, ok := rs.BandOf("Heavy Bleeding", knowledge.English)
	require.True(t, ok)
	assert.Equal(t, BandHigh, b)

	b, ok = rs.BandOf("headache", knowledge.English)
	require.True(t, ok)
	assert.Equal(t, BandMedium, b)

	_, ok = rs.BandOf("no bleeding", knowledge.English)
	assert.False(t, ok, "neutral phrases have no scoring band")

	assert.True(t, rs.HasPattern("preeclampsia"))
	assert.False(t, rs.HasPattern("flu"))
}

func TestConditionName(t *testing.T) {
	rs := DefaultRuleSet()
	assert.Equal(t, "Possible ectopic pregnancy", rs.ConditionName("ectopic", knowledge.English))
	assert.Equal(t, "حمل خارج الرحم محتمل", rs.ConditionName("ectopic", knowledge.Arabic))
	assert.Equal(t, "flu", rs.ConditionName("flu", knowledge.English))
}

func TestLoadOverride(t *testing.T) {
	dir := t.TempDir()

	ok := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(ok, []byte(minimalRules), 0o600))
	rs, err := LoadOverride(ok)
	require.NoError(t, err)
	assert.Equal(t, "v1.1.0", rs.Version())

	_, err = LoadOverride(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
