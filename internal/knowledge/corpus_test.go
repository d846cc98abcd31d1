package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCorpus_Loads(t *testing.T) {
	c := Default()
	if c.Len() != 11 {
		t.Fatalf("expected 11 items, got %d", c.Len())
	}

	tiers := map[Tier]int{}
	for _, it := range c.ItemsForLanguage(English) {
		tiers[it.Tier]++
	}
	assert.Equal(t, 4, tiers[TierHigh])
	assert.Equal(t, 4, tiers[TierMedium])
	assert.Equal(t, 3, tiers[TierLow])
}

func TestItemsForLanguage_Arabic(t *testing.T) {
	items := Default().ItemsForLanguage(Arabic)
	require.NotEmpty(t, items)
	assert.Equal(t, "أعراض طارئة", items[0].Category)
	assert.Contains(t, items[0].Keywords, "نزيف")
}

func TestItemsForLanguage_UnsupportedFallsBackToEnglish(t *testing.T) {
	c := Default()
	assert.Equal(t, c.ItemsForLanguage(English), c.ItemsForLanguage(Language("fr")))
	assert.Equal(t, c.DefaultContext(English), c.DefaultContext(Language("fr")))
}

func TestItemsForLanguage_ReturnsCopies(t *testing.T) {
	c := Default()
	items := c.ItemsForLanguage(English)
	items[0].Keywords[0] = "mutated"
	items[0].Category = "mutated"

	again := c.ItemsForLanguage(English)
	if again[0].Keywords[0] == "mutated" || again[0].Category == "mutated" {
		t.Fatal("corpus was mutated through a returned item")
	}
}

func TestDefaultContext_NonEmpty(t *testing.T) {
	for _, lang := range Languages {
		if Default().DefaultContext(lang) == "" {
			t.Errorf("empty default context for %s", lang)
		}
	}
	assert.Contains(t, Default().DefaultContext(English), "Essential pregnancy medical knowledge")
}

func TestQuestions(t *testing.T) {
	for _, lang := range Languages {
		q := Default().Questions(lang)
		assert.Len(t, q.Fallback, 10, lang)
		assert.Len(t, q.General, 2, lang)
		assert.Len(t, q.FollowUps, 5, lang)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", "items: []"},
		{"bad yaml", "items: [:"},
		{"missing id", `
items:
  - tier: High
    category: {en: X}
    keywords: {en: [a]}
    description: {en: d}
default_context: {en: ctx}
`},
		{"bad tier", `
items:
  - id: x
    tier: Severe
    category: {en: X}
    keywords: {en: [a]}
    description: {en: d}
default_context: {en: ctx}
`},
		{"missing english", `
items:
  - id: x
    tier: Low
    category: {ar: س}
    keywords: {ar: [ا]}
    description: {ar: د}
default_context: {en: ctx}
`},
		{"no default context", `
items:
  - id: x
    tier: Low
    category: {en: X}
    keywords: {en: [a]}
    description: {en: d}
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_ArabicFallsBackPerItem(t *testing.T) {
	c, err := Parse([]byte(`
items:
  - id: x
    tier: low
    score: 1
    category: {en: Normal}
    keywords: {en: [gas]}
    description: {en: Normal changes}
default_context: {en: ctx}
`))
	require.NoError(t, err)

	ar := c.ItemsForLanguage(Arabic)
	require.Len(t, ar, 1)
	assert.Equal(t, "Normal", ar[0].Category)
	assert.Equal(t, []string{"gas"}, ar[0].Keywords)
	assert.Equal(t, "ctx", c.DefaultContext(Arabic))
}

func TestParseLanguage(t *testing.T) {
	tests := map[string]Language{
		"en":    English,
		"AR":    Arabic,
		"ar-EG": Arabic,
		" ar ":  Arabic,
		"fr":    English,
		"":      English,
	}
	for in, want := range tests {
		if got := ParseLanguage(in); got != want {
			t.Errorf("ParseLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTierRank(t *testing.T) {
	assert.Less(t, TierLow.Rank(), TierMedium.Rank())
	assert.Less(t, TierMedium.Rank(), TierHigh.Rank())
	assert.False(t, Tier("Critical").Valid())

	tier, err := ParseTier("HIGH")
	require.NoError(t, err)
	assert.Equal(t, TierHigh, tier)
}
