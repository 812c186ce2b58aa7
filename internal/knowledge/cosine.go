package knowledge

import (
	"fmt"
	"math"
)

// CosineSimilarity returns the cosine similarity of two vectors, in [-1, 1].
// The vectors must have the same dimension; a mismatch means the caller mixed
// embeddings from different models, which is a bug, so it panics rather than
// returning a degraded score. Zero-magnitude input yields 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("cosine similarity: dimension mismatch %d vs %d", len(a), len(b)))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
