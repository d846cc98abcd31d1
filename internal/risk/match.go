package risk

import "strings"

type span struct{ start, end int }

// scan caches phrase occurrences within one folded answer text. It is
// created per call and never shared.
type scan struct {
	text string
	occ  map[string][]span
}

func newScan(text string) *scan {
	return &scan{text: text, occ: make(map[string][]span)}
}

// find returns every occurrence of p, including overlapping ones.
func (s *scan) find(p string) []span {
	if spans, ok := s.occ[p]; ok {
		return spans
	}
	var spans []span
	for from := 0; from < len(s.text); {
		i := strings.Index(s.text[from:], p)
		if i < 0 {
			break
		}
		start := from + i
		spans = append(spans, span{start: start, end: start + len(p)})
		from = start + 1
	}
	s.occ[p] = spans
	return spans
}

// survives reports whether p occurs at least once outside every occurrence
// of a longer phrase from shadows (longest match wins).
func (s *scan) survives(p string, shadows []string) bool {
	for _, sp := range s.find(p) {
		if !s.covered(sp, len(p), shadows) {
			return true
		}
	}
	return false
}

func (s *scan) covered(sp span, n int, shadows []string) bool {
	for _, q := range shadows {
		if len(q) <= n {
			// shadows are sorted longest first
			return false
		}
		for _, o := range s.find(q) {
			if o.start <= sp.start && sp.end <= o.end {
				return true
			}
		}
	}
	return false
}
