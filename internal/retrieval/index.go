package retrieval

import (
	"maps"
	"math"
	"slices"

	"github.com/abhisek/mamacheck/internal/knowledge"
	"github.com/abhisek/mamacheck/internal/textnorm"
)

// vector is a sparse term-frequency vector keyed by vocabulary column.
type vector map[int]float64

// cols returns the populated columns in ascending order. Summing in a fixed
// order keeps similarity scores bit-for-bit reproducible.
func (v vector) cols() []int {
	return slices.Sorted(maps.Keys(v))
}

func (v vector) norm() float64 {
	var sum float64
	for _, col := range v.cols() {
		sum += v[col] * v[col]
	}
	return math.Sqrt(sum)
}

// index is a term-frequency vector space over the items of one language.
// It is built once and only read afterwards.
type index struct {
	items   []knowledge.Item
	vocab   map[string]int
	vectors []vector
	norms   []float64
}

func buildIndex(items []knowledge.Item) *index {
	idx := &index{
		items:   items,
		vocab:   make(map[string]int),
		vectors: make([]vector, len(items)),
		norms:   make([]float64, len(items)),
	}

	for i, it := range items {
		v := vector{}
		for _, tok := range textnorm.Tokens(it.Document()) {
			col, ok := idx.vocab[tok]
			if !ok {
				col = len(idx.vocab)
				idx.vocab[tok] = col
			}
			v[col]++
		}
		idx.vectors[i] = v
		idx.norms[i] = v.norm()
	}
	return idx
}

// vectorize maps text onto the index vocabulary. Unknown terms are dropped.
func (idx *index) vectorize(text string) vector {
	v := vector{}
	for _, tok := range textnorm.Tokens(text) {
		if col, ok := idx.vocab[tok]; ok {
			v[col]++
		}
	}
	return v
}

// similarities returns the cosine similarity of q against every item, in
// item order. A zero query or zero document yields 0.
func (idx *index) similarities(q vector) []float64 {
	sims := make([]float64, len(idx.items))
	qn := q.norm()
	if qn == 0 {
		return sims
	}
	cols := q.cols()
	for i, doc := range idx.vectors {
		if idx.norms[i] == 0 {
			continue
		}
		var dot float64
		for _, col := range cols {
			dot += q[col] * doc[col]
		}
		sims[i] = dot / (qn * idx.norms[i])
	}
	return sims
}
