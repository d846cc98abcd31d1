// Package textnorm folds free-text answers and rule phrases into a common
// comparable form so that substring matching and tokenization behave the
// same for English and Arabic input.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// letterFolds maps letter and quote variants that carry no meaning for matching.
var letterFolds = strings.NewReplacer(
	"ـ", "", // tatweel
	"ى", "ي",
	"’", "'",
	"‘", "'",
)

// Fold lowercases s, strips combining marks (Latin accents, Arabic harakat
// and tanween), normalizes a few Arabic letter variants and collapses every
// run of whitespace into a single space. A hamza or madda carried by a letter
// is dropped with its seat kept: أ إ آ become ا, ئ becomes ي and ؤ becomes و.
func Fold(s string) string {
	if s == "" {
		return ""
	}

	// Transformers are stateful, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	folded = letterFolds.Replace(strings.ToLower(folded))
	return strings.Join(strings.Fields(folded), " ")
}

// Join folds every answer and joins them with newlines. No folded phrase
// contains a newline, so a match can never span two answers.
func Join(answers []string) string {
	parts := make([]string, 0, len(answers))
	for _, a := range answers {
		if f := Fold(a); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "\n")
}

// Tokens splits s into folded word tokens, dropping stop words and
// single-rune fragments.
func Tokens(s string) []string {
	words := strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	out := words[:0]
	for _, w := range words {
		if len([]rune(w)) < 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}
