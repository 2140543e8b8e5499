// Package similarity provides brute-force cosine search shared by the
// file-backed and in-memory document stores.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/docchat/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b.
// Zero-length or zero-norm vectors have similarity 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// TopK scores every chunk against query and returns the best k in
// descending similarity. Ties keep chunk position order.
func TopK(query []float32, chunks []domain.Chunk, k int, dims int) ([]domain.ScoredChunk, error) {
	if len(query) != dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, store has %d",
			domain.ErrDimensionMismatch, len(query), dims)
	}
	if k <= 0 || len(chunks) == 0 {
		return nil, nil
	}

	scored := make([]domain.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		scored = append(scored, domain.ScoredChunk{Chunk: c, Similarity: Cosine(query, c.Embedding)})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}
