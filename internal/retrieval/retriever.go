// Package retrieval ranks knowledge corpus items against prior answers with
// term-frequency cosine similarity and renders them as grounding context.
package retrieval

import (
	"slices"
	"sort"
	"strings"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/textnorm"
)

const (
	DefaultTopK      = 3
	DefaultThreshold = 0.1
	DefaultFollowUps = 2
)

// Match is a corpus item together with its similarity to the query.
type Match struct {
	Item       knowledge.Item
	Similarity float64
}

// Retriever is immutable after New and safe for concurrent use.
type Retriever struct {
	corpus    *knowledge.Corpus
	indexes   map[knowledge.Language]*index
	threshold float64
	topK      int
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithThreshold sets the minimum similarity (exclusive) for a match.
func WithThreshold(t float64) Option {
	return func(r *Retriever) {
		if t >= 0 && t < 1 {
			r.threshold = t
		}
	}
}

// WithTopK sets the default number of items returned when callers pass a
// non-positive topK.
func WithTopK(k int) Option {
	return func(r *Retriever) {
		if k > 0 {
			r.topK = k
		}
	}
}

// New builds one index per supported language. A nil corpus means the
// embedded default corpus.
func New(corpus *knowledge.Corpus, opts ...Option) *Retriever {
	if corpus == nil {
		corpus = knowledge.Default()
	}
	r := &Retriever{
		corpus:    corpus,
		indexes:   make(map[knowledge.Language]*index, len(knowledge.Languages)),
		threshold: DefaultThreshold,
		topK:      DefaultTopK,
	}
	for _, o := range opts {
		o(r)
	}
	for _, lang := range knowledge.Languages {
		r.indexes[lang] = buildIndex(corpus.ItemsForLanguage(lang))
	}
	return r
}

// Corpus returns the corpus the retriever was built from.
func (r *Retriever) Corpus() *knowledge.Corpus { return r.corpus }

func (r *Retriever) indexFor(lang knowledge.Language) *index {
	if idx, ok := r.indexes[lang]; ok {
		return idx
	}
	return r.indexes[knowledge.English]
}

// Search returns up to topK items whose similarity to the joined answers
// exceeds the threshold, most similar first. Ties keep corpus order.
func (r *Retriever) Search(answers []string, lang knowledge.Language, topK int) []Match {
	if topK <= 0 {
		topK = r.topK
	}
	query := strings.Join(answers, " ")
	if strings.TrimSpace(query) == "" {
		return nil
	}

	idx := r.indexFor(lang)
	sims := idx.similarities(idx.vectorize(query))

	var matches []Match
	for i, s := range sims {
		if s > r.threshold {
			matches = append(matches, Match{Item: idx.items[i], Similarity: s})
		}
	}
	sort.SliceStable(matches, func(a, b int) bool {
		return matches[a].Similarity > matches[b].Similarity
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// RelevantContext renders the best matching items as a text block for
// grounding question and explanation generation. It never returns an empty
// string: with no answers or no match above the threshold the language's
// default context is returned.
func (r *Retriever) RelevantContext(answers []string, lang knowledge.Language, topK int) string {
	matches := r.Search(answers, lang, topK)
	if len(matches) == 0 {
		return r.corpus.DefaultContext(lang)
	}
	return render(matches, lang)
}

func render(matches []Match, lang knowledge.Language) string {
	labels := contextLabels[knowledge.English]
	if l, ok := contextLabels[lang]; ok {
		labels = l
	}

	blocks := make([]string, len(matches))
	for i, m := range matches {
		var b strings.Builder
		b.WriteString(labels.category + ": " + m.Item.Category + "\n")
		b.WriteString(labels.risk + ": " + labels.tiers[m.Item.Tier] + "\n")
		b.WriteString(labels.symptoms + ": " + strings.Join(m.Item.Keywords, labels.sep) + "\n")
		b.WriteString(m.Item.Description)
		blocks[i] = b.String()
	}
	return strings.Join(blocks, "\n\n")
}

type labelSet struct {
	category, risk, symptoms, sep string
	tiers                         map[knowledge.Tier]string
}

var contextLabels = map[knowledge.Language]labelSet{
	knowledge.English: {
		category: "Category",
		risk:     "Risk Level",
		symptoms: "Symptoms",
		sep:      ", ",
		tiers: map[knowledge.Tier]string{
			knowledge.TierLow:    "Low",
			knowledge.TierMedium: "Medium",
			knowledge.TierHigh:   "High",
		},
	},
	knowledge.Arabic: {
		category: "الفئة",
		risk:     "مستوى الخطورة",
		symptoms: "الأعراض",
		sep:      "، ",
		tiers: map[knowledge.Tier]string{
			knowledge.TierLow:    "منخفض",
			knowledge.TierMedium: "متوسط",
			knowledge.TierHigh:   "عالي",
		},
	},
}

// FollowUps picks up to max contextual questions (DefaultFollowUps when
// max <= 0). Questions whose trigger appears in the answers come first,
// then those triggered by retrieved items. With no answers the first
// fallback questions are returned; with no trigger at all, the general
// follow-up questions.
func (r *Retriever) FollowUps(answers []string, lang knowledge.Language, max int) []string {
	if max <= 0 {
		max = DefaultFollowUps
	}
	bank := r.corpus.Questions(lang)

	answerText := textnorm.Join(answers)
	if answerText == "" {
		return head(bank.Fallback, max)
	}
	contextText := textnorm.Fold(render(r.Search(answers, lang, 0), lang))

	var out []string
	for _, text := range []string{answerText, contextText} {
		for _, fu := range bank.FollowUps {
			if triggered(text, fu.Triggers) && !slices.Contains(out, fu.Question) {
				out = append(out, fu.Question)
			}
		}
	}
	if len(out) == 0 {
		return head(bank.General, max)
	}
	return head(out, max)
}

func triggered(text string, triggers []string) bool {
	for _, t := range triggers {
		if f := textnorm.Fold(t); f != "" && strings.Contains(text, f) {
			return true
		}
	}
	return false
}

func head(list []string, n int) []string {
	if len(list) > n {
		list = list[:n]
	}
	return append([]string(nil), list...)
}
