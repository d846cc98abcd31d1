package risk

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/textnorm"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// ErrIncompatibleRules is returned when an override rule set does not share
// the built-in rule set's major version.
var ErrIncompatibleRules = errors.New("incompatible rule set version")

// DefaultMinMatches applies to patterns that do not set min_matches.
const DefaultMinMatches = 2

type ruleFile struct {
	Version   string                          `yaml:"version"`
	Languages map[knowledge.Language]tableFile `yaml:"languages"`
	Patterns  []patternFile                   `yaml:"patterns"`
}

type tableFile struct {
	FactorsLabel string                `yaml:"factors_label"`
	High         []string              `yaml:"high"`
	Medium       []string              `yaml:"medium"`
	Low          []string              `yaml:"low"`
	Neutral      []string              `yaml:"neutral"`
	Tiers        map[string]adviceFile `yaml:"tiers"`
}

type adviceFile struct {
	Explanation    string `yaml:"explanation"`
	Recommendation string `yaml:"recommendation"`
}

type patternFile struct {
	ID             string                              `yaml:"id"`
	MinMatches     int                                 `yaml:"min_matches"`
	Name           map[knowledge.Language]string       `yaml:"name"`
	Signs          map[knowledge.Language][][]string   `yaml:"signs"`
	Explanation    map[knowledge.Language]string       `yaml:"explanation"`
	Recommendation map[knowledge.Language]string       `yaml:"recommendation"`
}

// phrase is a rule phrase as authored plus its folded matching form.
type phrase struct {
	text   string
	folded string
}

// Advice is the explanation and recommendation shown for a tier or pattern.
type Advice struct {
	Explanation    string
	Recommendation string
}

// table is the compiled rule table of one language.
type table struct {
	bands        map[Band][]phrase
	neutral      []phrase
	shadows      []string // every folded phrase, longest first
	advice       map[knowledge.Tier]Advice
	factorsLabel string
	patterns     []*Pattern
}

// RuleSet is the immutable, versioned triage configuration shared by the
// classifier, the pattern detector and the recommendation mapper.
type RuleSet struct {
	version string
	tables  map[knowledge.Language]*table
}

var defaultRuleSet = sync.OnceValue(func() *RuleSet {
	rs, err := ParseRuleSet(rulesYAML)
	if err != nil {
		panic(fmt.Sprintf("risk: embedded rule set is invalid: %v", err))
	}
	return rs
})

// DefaultRuleSet returns the embedded rule set.
func DefaultRuleSet() *RuleSet {
	return defaultRuleSet()
}

// ParseRuleSet compiles and validates a YAML rule set. English rules are
// mandatory; a language without its own table uses the English one.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rule set: %w", err)
	}
	if !semver.IsValid(f.Version) {
		return nil, fmt.Errorf("rule set version %q is not a semantic version", f.Version)
	}
	if _, ok := f.Languages[knowledge.English]; !ok {
		return nil, fmt.Errorf("rule set has no %q table", knowledge.English)
	}

	rs := &RuleSet{
		version: semver.Canonical(f.Version),
		tables:  make(map[knowledge.Language]*table, len(f.Languages)),
	}

	for lang, tf := range f.Languages {
		if !lang.Supported() {
			return nil, fmt.Errorf("rule set: unsupported language %q", lang)
		}
		t, err := compileTable(tf)
		if err != nil {
			return nil, fmt.Errorf("rule set %s table: %w", lang, err)
		}
		rs.tables[lang] = t
	}

	// Advice falls back to English tier by tier.
	en := rs.tables[knowledge.English]
	for _, tier := range []knowledge.Tier{knowledge.TierLow, knowledge.TierMedium, knowledge.TierHigh} {
		if en.advice[tier].Recommendation == "" {
			return nil, fmt.Errorf("rule set: english recommendation for %s is missing", tier)
		}
		for _, t := range rs.tables {
			if t.advice[tier].Recommendation == "" {
				t.advice[tier] = en.advice[tier]
			}
		}
	}

	seen := make(map[string]bool, len(f.Patterns))
	for i, pf := range f.Patterns {
		if pf.ID == "" {
			return nil, fmt.Errorf("pattern %d has no id", i)
		}
		if seen[pf.ID] {
			return nil, fmt.Errorf("duplicate pattern %q", pf.ID)
		}
		seen[pf.ID] = true

		for lang, t := range rs.tables {
			p, err := compilePattern(pf, lang, t)
			if err != nil {
				return nil, fmt.Errorf("pattern %q (%s): %w", pf.ID, lang, err)
			}
			t.patterns = append(t.patterns, p)
		}
	}

	return rs, nil
}

func compileTable(tf tableFile) (*table, error) {
	t := &table{
		bands:        make(map[Band][]phrase, 3),
		advice:       make(map[knowledge.Tier]Advice, 3),
		factorsLabel: tf.FactorsLabel,
	}

	owner := make(map[string]Band)
	add := func(b Band, raw []string) ([]phrase, error) {
		out := make([]phrase, 0, len(raw))
		for _, text := range raw {
			p, err := compilePhrase(text)
			if err != nil {
				return nil, err
			}
			if prev, dup := owner[p.folded]; dup {
				return nil, fmt.Errorf("phrase %q listed in both %s and %s", text, prev, b)
			}
			owner[p.folded] = b
			out = append(out, p)
			t.shadows = append(t.shadows, p.folded)
		}
		return out, nil
	}

	var err error
	if t.bands[BandHigh], err = add(BandHigh, tf.High); err != nil {
		return nil, err
	}
	if t.bands[BandMedium], err = add(BandMedium, tf.Medium); err != nil {
		return nil, err
	}
	if t.bands[BandLow], err = add(BandLow, tf.Low); err != nil {
		return nil, err
	}
	if t.neutral, err = add(BandNeutral, tf.Neutral); err != nil {
		return nil, err
	}
	if len(t.bands[BandHigh]) == 0 {
		return nil, fmt.Errorf("high band is empty")
	}
	sortLongestFirst(t.shadows)

	for name, af := range tf.Tiers {
		tier, err := knowledge.ParseTier(name)
		if err != nil {
			return nil, err
		}
		t.advice[tier] = Advice{Explanation: af.Explanation, Recommendation: af.Recommendation}
	}
	return t, nil
}

func compilePhrase(text string) (phrase, error) {
	if strings.ContainsAny(text, "\n\r") {
		return phrase{}, fmt.Errorf("phrase %q spans lines", text)
	}
	folded := textnorm.Fold(text)
	if folded == "" {
		return phrase{}, fmt.Errorf("empty phrase")
	}
	return phrase{text: strings.TrimSpace(text), folded: folded}, nil
}

func compilePattern(pf patternFile, lang knowledge.Language, t *table) (*Pattern, error) {
	p := &Pattern{
		ID:         pf.ID,
		Name:       pickLocalized(pf.Name, lang, pf.ID),
		MinMatches: pf.MinMatches,
		Advice: Advice{
			Explanation:    pickLocalized(pf.Explanation, lang, ""),
			Recommendation: pickLocalized(pf.Recommendation, lang, ""),
		},
	}
	if p.MinMatches <= 0 {
		p.MinMatches = DefaultMinMatches
	}
	if p.Advice.Recommendation == "" {
		return nil, fmt.Errorf("recommendation is missing")
	}

	signs, ok := pf.Signs[lang]
	if !ok {
		signs = pf.Signs[knowledge.English]
	}
	if len(signs) < p.MinMatches {
		return nil, fmt.Errorf("%d signs cannot reach min_matches %d", len(signs), p.MinMatches)
	}

	shadows := slices.Clone(t.shadows)
	for _, group := range signs {
		var sign []phrase
		for _, text := range group {
			ph, err := compilePhrase(text)
			if err != nil {
				return nil, err
			}
			sign = append(sign, ph)
			if !slices.Contains(shadows, ph.folded) {
				shadows = append(shadows, ph.folded)
			}
		}
		if len(sign) == 0 {
			return nil, fmt.Errorf("empty sign")
		}
		p.signs = append(p.signs, sign)
	}
	sortLongestFirst(shadows)
	p.shadows = shadows
	return p, nil
}

func pickLocalized(values map[knowledge.Language]string, lang knowledge.Language, fallback string) string {
	if v := strings.TrimSpace(values[lang]); v != "" {
		return v
	}
	if v := strings.TrimSpace(values[knowledge.English]); v != "" {
		return v
	}
	return fallback
}

func sortLongestFirst(s []string) {
	slices.SortStableFunc(s, func(a, b string) int { return len(b) - len(a) })
}

func (rs *RuleSet) table(lang knowledge.Language) *table {
	if t, ok := rs.tables[lang]; ok {
		return t
	}
	return rs.tables[knowledge.English]
}

// Version returns the canonical semantic version of the rule set.
func (rs *RuleSet) Version() string { return rs.version }

// Phrases returns the authored phrases of one band for lang.
func (rs *RuleSet) Phrases(lang knowledge.Language, b Band) []string {
	t := rs.table(lang)
	src := t.bands[b]
	if b == BandNeutral {
		src = t.neutral
	}
	out := make([]string, len(src))
	for i, p := range src {
		out[i] = p.text
	}
	return out
}

// Patterns returns the condition patterns for lang in priority order.
func (rs *RuleSet) Patterns(lang knowledge.Language) []*Pattern {
	return slices.Clone(rs.table(lang).patterns)
}

// Advice returns the tier explanation and recommendation for lang.
func (rs *RuleSet) Advice(tier knowledge.Tier, lang knowledge.Language) Advice {
	return rs.table(lang).advice[tier]
}

// CheckCompatible verifies that override can replace base: both must share
// the same major version.
func CheckCompatible(base, override *RuleSet) error {
	if semver.Major(base.Version()) != semver.Major(override.Version()) {
		return fmt.Errorf("%w: built-in %s, override %s", ErrIncompatibleRules, base.Version(), override.Version())
	}
	return nil
}

// BandOf reports which scoring band of lang's table contains text, compared
// after folding. Neutral phrases are not reported.
func (rs *RuleSet) BandOf(text string, lang knowledge.Language) (Band, bool) {
	folded := textnorm.Fold(text)
	t := rs.table(lang)
	for _, b := range []Band{BandHigh, BandMedium, BandLow} {
		for _, p := range t.bands[b] {
			if p.folded == folded {
				return b, true
			}
		}
	}
	return "", false
}

// HasPattern reports whether id names a condition pattern.
func (rs *RuleSet) HasPattern(id string) bool {
	for _, p := range rs.table(knowledge.English).patterns {
		if p.ID == id {
			return true
		}
	}
	return false
}

// LoadOverride reads a rule set file and checks it against the embedded
// rule set's major version.
func LoadOverride(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}
	rs, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("parse rule set %s: %w", path, err)
	}
	if err := CheckCompatible(DefaultRuleSet(), rs); err != nil {
		return nil, err
	}
	return rs, nil
}

// ConditionName returns the localized name of the condition pattern id, or
// id itself when no pattern has it.
func (rs *RuleSet) ConditionName(id string, lang knowledge.Language) string {
	for _, p := range rs.table(lang).patterns {
		if p.ID == id && p.Name != "" {
			return p.Name
		}
	}
	return id
}
