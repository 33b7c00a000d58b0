package index

import (
	"fmt"
	"math"
	"sort"

	"storyweaver/internal/domain"
)

// Index is one theme's similarity-searchable set of embedded passages.
// Immutable after construction; safe for concurrent readers.
type Index struct {
	theme    string
	embedder domain.Embedder
	passages []domain.Passage
	vectors  [][]float64
}

// Theme returns the theme this index was built for.
func (ix *Index) Theme() string { return ix.theme }

// Len returns the number of indexed passages.
func (ix *Index) Len() int { return len(ix.passages) }

// Retrieve returns the top-k passages by cosine similarity to the query,
// filtered to the index's own theme.
func (ix *Index) Retrieve(query string, k int) ([]domain.SearchResult, error) {
	if k <= 0 {
		k = 5
	}
	vec, err := ix.embedder.Embed(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	results := make([]domain.SearchResult, 0, len(ix.passages))
	for i, p := range ix.passages {
		if p.Theme != ix.theme {
			continue
		}
		results = append(results, domain.SearchResult{
			Passage: p,
			Score:   cosineSimilarity(vec, ix.vectors[i]),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
