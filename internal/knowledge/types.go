package knowledge

import (
	"fmt"
	"strings"
)

// Language selects the corpus, rule tables and output text.
type Language string

const (
	English Language = "en"
	Arabic  Language = "ar"
)

// Languages lists every supported language. English is the fallback.
var Languages = []Language{English, Arabic}

// Supported reports whether l has its own corpus and rule tables.
func (l Language) Supported() bool {
	return l == English || l == Arabic
}

// ParseLanguage normalizes a language code. Unsupported or empty codes fall
// back to English; this never fails.
func ParseLanguage(code string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(code)))
	if i := strings.IndexAny(string(l), "-_"); i > 0 {
		l = l[:i] // "ar-EG" -> "ar"
	}
	if l.Supported() {
		return l
	}
	return English
}

// Tier is the triage output.
type Tier string

const (
	TierLow    Tier = "Low"
	TierMedium Tier = "Medium"
	TierHigh   Tier = "High"
)

// Rank orders tiers: Low < Medium < High. Unknown tiers rank below Low.
func (t Tier) Rank() int {
	switch t {
	case TierLow:
		return 0
	case TierMedium:
		return 1
	case TierHigh:
		return 2
	default:
		return -1
	}
}

// Valid reports whether t is one of the three tiers.
func (t Tier) Valid() bool { return t.Rank() >= 0 }

// ParseTier accepts tier names case-insensitively.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return TierLow, nil
	case "medium":
		return TierMedium, nil
	case "high":
		return TierHigh, nil
	}
	return "", fmt.Errorf("unknown risk tier %q", s)
}

// Item is one entry of the medical knowledge corpus, projected to a single
// language.
type Item struct {
	ID          string
	Category    string
	Tier        Tier
	Score       int      // severity weight, 1 (low) to 3 (high)
	Keywords    []string // symptom phrases in the item's language
	Description string
}

// Document returns the text indexed for retrieval.
func (i Item) Document() string {
	return i.Category + " " + i.Description + " " + strings.Join(i.Keywords, " ")
}

// FollowUp is a contextual question asked when any trigger word appears in
// the prior answers or retrieved context.
type FollowUp struct {
	Triggers []string
	Question string
}
