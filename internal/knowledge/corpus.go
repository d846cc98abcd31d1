// Package knowledge holds the static medical knowledge corpus: symptom
// categories with their risk tier, the default retrieval context and the
// screening question bank, each available in English and Arabic.
package knowledge

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var corpusYAML []byte

// localized is a per-language text value as it appears in the YAML source.
type localized map[Language]string

type corpusFile struct {
	Items []struct {
		ID          string                `yaml:"id"`
		Tier        string                `yaml:"tier"`
		Score       int                   `yaml:"score"`
		Category    localized             `yaml:"category"`
		Keywords    map[Language][]string `yaml:"keywords"`
		Description localized             `yaml:"description"`
	} `yaml:"items"`
	DefaultContext localized                 `yaml:"default_context"`
	Questions      map[Language]questionFile `yaml:"questions"`
}

type questionFile struct {
	Fallback  []string `yaml:"fallback"`
	General   []string `yaml:"general"`
	FollowUps []struct {
		Triggers []string `yaml:"triggers"`
		Question string   `yaml:"question"`
	} `yaml:"follow_ups"`
}

// QuestionBank holds the screening questions for one language.
type QuestionBank struct {
	Fallback  []string   // asked in order when no generator is available
	General   []string   // asked when no follow-up trigger matches
	FollowUps []FollowUp // contextual follow-ups in priority order
}

// Corpus is the immutable knowledge corpus. All accessors are safe for
// concurrent use and return copies.
type Corpus struct {
	items     map[Language][]Item
	defaults  map[Language]string
	questions map[Language]QuestionBank
}

var defaultCorpus = sync.OnceValue(func() *Corpus {
	c, err := Parse(corpusYAML)
	if err != nil {
		panic(fmt.Sprintf("knowledge: embedded corpus is invalid: %v", err))
	}
	return c
})

// Default returns the embedded corpus.
func Default() *Corpus {
	return defaultCorpus()
}

// Parse builds a Corpus from YAML. Every item must carry English text;
// other languages are optional and fall back to English per item.
func Parse(data []byte) (*Corpus, error) {
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if len(f.Items) == 0 {
		return nil, fmt.Errorf("corpus has no items")
	}

	c := &Corpus{
		items:     make(map[Language][]Item, len(Languages)),
		defaults:  make(map[Language]string, len(Languages)),
		questions: make(map[Language]QuestionBank, len(Languages)),
	}

	seen := make(map[string]bool, len(f.Items))
	for _, raw := range f.Items {
		if raw.ID == "" {
			return nil, fmt.Errorf("corpus item without id")
		}
		if seen[raw.ID] {
			return nil, fmt.Errorf("duplicate corpus item %q", raw.ID)
		}
		seen[raw.ID] = true

		tier, err := ParseTier(raw.Tier)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", raw.ID, err)
		}
		if raw.Category[English] == "" || raw.Description[English] == "" || len(raw.Keywords[English]) == 0 {
			return nil, fmt.Errorf("item %q: english category, description and keywords are required", raw.ID)
		}

		for _, lang := range Languages {
			item := Item{
				ID:          raw.ID,
				Category:    pick(raw.Category, lang),
				Tier:        tier,
				Score:       raw.Score,
				Description: pick(raw.Description, lang),
				Keywords:    raw.Keywords[lang],
			}
			if len(item.Keywords) == 0 {
				item.Keywords = raw.Keywords[English]
			}
			c.items[lang] = append(c.items[lang], item)
		}
	}

	for _, lang := range Languages {
		c.defaults[lang] = strings.TrimSpace(pick(f.DefaultContext, lang))
		if c.defaults[lang] == "" {
			return nil, fmt.Errorf("default context missing for %q", lang)
		}

		qf, ok := f.Questions[lang]
		if !ok {
			qf = f.Questions[English]
		}
		bank := QuestionBank{
			Fallback: qf.Fallback,
			General:  qf.General,
		}
		for _, fu := range qf.FollowUps {
			bank.FollowUps = append(bank.FollowUps, FollowUp{Triggers: fu.Triggers, Question: fu.Question})
		}
		c.questions[lang] = bank
	}

	return c, nil
}

func pick(values localized, lang Language) string {
	if v := values[lang]; v != "" {
		return v
	}
	return values[English]
}

// ItemsForLanguage returns the items projected to lang. Unsupported
// languages get the English projection.
func (c *Corpus) ItemsForLanguage(lang Language) []Item {
	items, ok := c.items[lang]
	if !ok {
		items = c.items[English]
	}
	out := make([]Item, len(items))
	for i, it := range items {
		it.Keywords = slices.Clone(it.Keywords)
		out[i] = it
	}
	return out
}

// DefaultContext returns the fixed context used when retrieval finds nothing.
func (c *Corpus) DefaultContext(lang Language) string {
	if d, ok := c.defaults[lang]; ok {
		return d
	}
	return c.defaults[English]
}

// Questions returns the question bank for lang.
func (c *Corpus) Questions(lang Language) QuestionBank {
	b, ok := c.questions[lang]
	if !ok {
		b = c.questions[English]
	}
	out := QuestionBank{
		Fallback:  slices.Clone(b.Fallback),
		General:   slices.Clone(b.General),
		FollowUps: make([]FollowUp, len(b.FollowUps)),
	}
	for i, fu := range b.FollowUps {
		out.FollowUps[i] = FollowUp{Triggers: slices.Clone(fu.Triggers), Question: fu.Question}
	}
	return out
}

// Len returns the number of items in the corpus.
func (c *Corpus) Len() int {
	return len(c.items[English])
}
