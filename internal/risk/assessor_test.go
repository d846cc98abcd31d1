package risk

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phrases(factors []Factor) []string {
	out := make([]string, len(factors))
	for i, f := range factors {
		out[i] = f.Phrase
	}
	return out
}

func TestAssess_EctopicPattern(t *testing.T) {
	a := NewAssessor(nil)
	got := a.Assess([]string{"no", "no", "no", "no", "140/83", "severe abdominal pain on one side and feel dizzy"}, knowledge.English)

	assert.Equal(t, knowledge.TierHigh, got.RiskTier)
	assert.Equal(t, "ectopic", got.Condition())
	assert.True(t, got.UrgentCareNeeded)
	assert.Equal(t, []string{"severe abdominal pain", "pain on one side"}, phrases(got.MatchedFactors))
	assert.Equal(t, 6, got.RiskScore)
	assert.Contains(t, got.Explanation, "ectopic pregnancy")
}

func TestAssess_MildSymptomsAreLow(t *testing.T) {
	a := NewAssessor(nil)
	got := a.Assess([]string{"I have mild nausea and some back pain"}, knowledge.English)

	assert.Equal(t, knowledge.TierLow, got.RiskTier)
	assert.False(t, got.UrgentCareNeeded)
	assert.Nil(t, got.DetectedCondition)
	assert.Equal(t, []string{"mild nausea"}, phrases(got.MatchedFactors))
	assert.Equal(t, 1, got.RiskScore)
}

func TestAssess_ArabicHighRisk(t *testing.T) {
	a := NewAssessor(nil)
	got := a.Assess([]string{"أعاني من صداع شديد مستمر", "لاحظت تورماً مفاجئاً وشديداً"}, knowledge.Arabic)

	assert.Equal(t, knowledge.TierHigh, got.RiskTier)
	assert.GreaterOrEqual(t, got.RiskScore, 3)
	assert.True(t, got.UrgentCareNeeded)
	assert.Equal(t, "preeclampsia", got.Condition())
	for _, f := range got.MatchedFactors {
		assert.Equal(t, BandHigh, f.Band)
	}
}

func TestAssess_EmptyAnswers(t *testing.T) {
	a := NewAssessor(nil)
	for _, answers := range [][]string{nil, {}, {"", "  "}} {
		got := a.Assess(answers, knowledge.English)
		assert.Equal(t, knowledge.TierLow, got.RiskTier)
		assert.Equal(t, 0, got.RiskScore)
		assert.Empty(t, got.MatchedFactors)
		assert.NotNil(t, got.MatchedFactors)
		assert.Nil(t, got.DetectedCondition)
		assert.Equal(t, "Continue routine prenatal care and maintain a healthy lifestyle.", got.Recommendation)
		assert.Equal(t, "Your symptoms appear to be normal pregnancy-related changes.", got.Explanation)
	}
}

func TestAssess_MediumAccumulation(t *testing.T) {
	a := NewAssessor(nil)
	got := a.Assess([]string{"vomiting", "mild swelling", "close to upper limit"}, knowledge.English)

	assert.Equal(t, knowledge.TierMedium, got.RiskTier)
	assert.GreaterOrEqual(t, got.RiskScore, 4)
	assert.False(t, got.UrgentCareNeeded)
	assert.Nil(t, got.DetectedCondition)
	assert.Equal(t, []string{"vomiting", "close to upper limit", "mild swelling"}, phrases(got.MatchedFactors))
	assert.Contains(t, got.Recommendation, "within 24 hours")
}

func TestAssess_LongestMatchWins(t *testing.T) {
	a := NewAssessor(nil)

	got := a.Assess([]string{"severe headache"}, knowledge.English)
	assert.Equal(t, []string{"severe headache"}, phrases(got.MatchedFactors))
	assert.Equal(t, 3, got.RiskScore)

	// A separate mention of the shorter phrase is its own occurrence.
	score := NewKeywordClassifier(DefaultRuleSet()).Score([]string{"unusual discharge", "headache"}, knowledge.English)
	assert.Equal(t, []string{"unusual discharge", "headache"}, phrases(score.Factors))
	assert.Equal(t, 4, score.Value)
}

func TestAssess_NegationsAreNeutral(t *testing.T) {
	a := NewAssessor(nil)
	got := a.Assess([]string{"No bleeding", "no headache", "no swelling"}, knowledge.English)
	assert.Equal(t, knowledge.TierLow, got.RiskTier)
	assert.Empty(t, got.MatchedFactors)

	got = a.Assess([]string{"لا يوجد نزيف"}, knowledge.Arabic)
	assert.Equal(t, knowledge.TierLow, got.RiskTier)
}

func TestAssess_HighRiskSuppressesLowerBands(t *testing.T) {
	score := NewKeywordClassifier(DefaultRuleSet()).Score([]string{"bleeding", "vomiting", "heartburn"}, knowledge.English)
	assert.True(t, score.HighRiskFound)
	assert.Equal(t, 3, score.Value)
	assert.Equal(t, []string{"bleeding"}, phrases(score.Factors))
}

func TestAssess_LowPhrasesAccumulate(t *testing.T) {
	a := NewAssessor(nil)
	assert.Equal(t, knowledge.TierLow, a.Assess([]string{"heartburn"}, knowledge.English).RiskTier)
	assert.Equal(t, knowledge.TierMedium, a.Assess([]string{"heartburn", "constipation"}, knowledge.English).RiskTier)
}

func TestAssess_FactorCapAndDisplayCap(t *testing.T) {
	a := NewAssessor(nil)
	got := a.Assess([]string{"bleeding", "chest pain", "seizure", "high fever"}, knowledge.English)

	assert.Equal(t, knowledge.TierHigh, got.RiskTier)
	assert.Len(t, got.MatchedFactors, MaxMatchedFactors)
	assert.Equal(t, MaxDisplayScore, got.RiskScore)

	score := NewKeywordClassifier(DefaultRuleSet()).Score([]string{"bleeding", "chest pain", "seizure", "high fever"}, knowledge.English)
	assert.Equal(t, 12, score.Value)
}

func TestAssess_FactorsMostSevereFirst(t *testing.T) {
	factors := topFactors([]Factor{
		{Phrase: "tired", Band: BandLow, Weight: 1},
		{Phrase: "vomiting", Band: BandMedium, Weight: 2},
		{Phrase: "heartburn", Band: BandLow, Weight: 1},
		{Phrase: "fever", Band: BandMedium, Weight: 2},
	})
	assert.Equal(t, []string{"vomiting", "fever", "tired"}, phrases(factors))
}

func TestAssess_PatternOverridesScore(t *testing.T) {
	a := NewAssessor(nil)
	answers := []string{"contractions", "cramps"}

	score := NewKeywordClassifier(DefaultRuleSet()).Score(answers, knowledge.English)
	require.Equal(t, 2, score.Value)
	require.False(t, score.HighRiskFound)

	got := a.Assess(answers, knowledge.English)
	assert.Equal(t, knowledge.TierHigh, got.RiskTier)
	assert.Equal(t, "preterm_labor", got.Condition())
	assert.True(t, got.UrgentCareNeeded)
}

func TestAssess_NeutralPhraseShadowsPatternTrigger(t *testing.T) {
	a := NewAssessor(nil)
	got := a.Assess([]string{"no contractions", "cramps"}, knowledge.English)
	assert.Nil(t, got.DetectedCondition)
	assert.Equal(t, knowledge.TierMedium, got.RiskTier)
}

func TestAssess_SynonymsCountOnce(t *testing.T) {
	p := NewPatternDetector(DefaultRuleSet())
	// Both phrases belong to the dizziness sign of the ectopic pattern.
	assert.Nil(t, p.Detect([]string{"dizzy", "lightheaded"}, knowledge.English))
	assert.NotNil(t, p.Detect([]string{"dizzy", "pain on the left side"}, knowledge.English))
}

func TestAssess_UnsupportedLanguageUsesEnglish(t *testing.T) {
	a := NewAssessor(nil)
	answers := []string{"severe headache", "blurry vision"}
	assert.Equal(t, a.Assess(answers, knowledge.English), a.Assess(answers, knowledge.Language("fr")))
}

func TestAssess_ArabicTexts(t *testing.T) {
	a := NewAssessor(nil)
	got := a.Assess([]string{"غثيان خفيف"}, knowledge.Arabic)
	assert.Equal(t, knowledge.TierLow, got.RiskTier)
	assert.Equal(t, []string{"غثيان خفيف"}, phrases(got.MatchedFactors))
	assert.Equal(t, "استمري في المتابعة الدورية للحمل واحرصي على نمط حياة صحي.", got.Recommendation)
	assert.Contains(t, got.Explanation, "الأعراض الملحوظة:")
}

var propertyInputs = [][]string{
	nil,
	{"no", "no"},
	{"I feel fine"},
	{"heartburn"},
	{"mild nausea", "tired"},
	{"vomiting", "mild swelling", "close to upper limit"},
	{"headache and some swelling"},
	{"no bleeding", "cramps"},
	{"severe headache", "blurry vision"},
	{"أعاني من غثيان خفيف"},
	{"دوخة", "قيء"},
}

func TestAssess_Monotonicity(t *testing.T) {
	a := NewAssessor(nil)
	for _, lang := range knowledge.Languages {
		high := a.Rules().Phrases(lang, BandHigh)
		require.NotEmpty(t, high)
		for _, base := range propertyInputs {
			before := a.Assess(base, lang).RiskTier
			for _, p := range high {
				after := a.Assess(append(append([]string{}, base...), p), lang).RiskTier
				if after.Rank() < before.Rank() {
					t.Errorf("%s: appending %q to %q lowered tier %s -> %s", lang, p, base, before, after)
				}
				if after != knowledge.TierHigh {
					t.Errorf("%s: appending %q to %q gave %s, want High", lang, p, base, after)
				}
			}
		}
	}
}

func TestAssess_TotalIdempotentCoupled(t *testing.T) {
	a := NewAssessor(nil)
	for _, lang := range []knowledge.Language{knowledge.English, knowledge.Arabic, "xx"} {
		for _, in := range propertyInputs {
			first := a.Assess(in, lang)
			second := a.Assess(in, lang)
			assert.Equal(t, first, second)

			assert.True(t, first.RiskTier.Valid())
			assert.Equal(t, first.RiskTier == knowledge.TierHigh, first.UrgentCareNeeded)
			assert.LessOrEqual(t, len(first.MatchedFactors), MaxMatchedFactors)
			assert.LessOrEqual(t, first.RiskScore, MaxDisplayScore)
			assert.NotEmpty(t, first.Recommendation)
			if first.DetectedCondition != nil {
				assert.Equal(t, knowledge.TierHigh, first.RiskTier)
			}
		}
	}
}

func TestAssessment_JSONShape(t *testing.T) {
	a := NewAssessor(nil)
	raw, err := json.Marshal(a.Assess(nil, knowledge.English))
	require.NoError(t, err)

	s := string(raw)
	for _, field := range []string{`"riskTier":"Low"`, `"riskScore":0`, `"matchedFactors":[]`, `"explanation":`, `"recommendation":`, `"urgentCareNeeded":false`, `"detectedCondition":null`} {
		if !strings.Contains(s, field) {
			t.Errorf("missing %s in %s", field, s)
		}
	}
}

func TestAssess_ConcurrentCallers(t *testing.T) {
	a := NewAssessor(nil)
	inputs := []struct {
		answers []string
		lang    knowledge.Language
	}{
		{[]string{"severe abdominal pain on one side and feel dizzy"}, knowledge.English},
		{[]string{"أعاني من صداع شديد مستمر", "لاحظت تورماً مفاجئاً وشديداً"}, knowledge.Arabic},
		{[]string{"vomiting", "mild swelling", "close to upper limit"}, knowledge.English},
		{nil, knowledge.Arabic},
	}
	want := make([]Assessment, len(inputs))
	for i, in := range inputs {
		want[i] = a.Assess(in.answers, in.lang)
	}

	var wg sync.WaitGroup
	for g := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 50 {
				k := (g + i) % len(inputs)
				if got := a.Assess(inputs[k].answers, inputs[k].lang); !assert.Equal(t, want[k], got) {
					return
				}
			}
		}()
	}
	wg.Wait()
}
