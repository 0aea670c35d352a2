package domain

import (
	"math"
	"strings"
)

// CosineSimilarity returns the cosine similarity of two vectors in
// [-1, 1]. If either vector has zero magnitude the similarity is 0.
// Vectors of different lengths cannot be compared; callers should check
// EmbeddingRecord.Validate before storage, but a mismatch here fails the
// single comparison rather than the whole batch.
func CosineSimilarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0, nil
	}

	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB))), nil
}

// EstimateTokens is the fixed token-count heuristic used across the
// pipeline: max(1, len/4). It is not a real tokenizer; the chunk-size
// and overlap contracts are defined in terms of this estimate.
func EstimateTokens(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}
