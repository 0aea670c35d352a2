// Package hash provides a deterministic embedding service that needs no
// model server. Vectors are derived from per-word hashes, so identical
// wording embeds identically and shared vocabulary yields nonzero
// similarity. Quality is far below a real model; it exists as an
// offline fallback and for tests.
package hash

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*Embedder)(nil)

const defaultDimensions = 384

// Embedder is a deterministic hash-based embedding service.
type Embedder struct {
	dimensions int
}

// NewEmbedder creates a hash embedder with the default 384 dimensions.
func NewEmbedder() *Embedder {
	return &Embedder{dimensions: defaultDimensions}
}

// Embed generates a vector for the given text. Empty or whitespace-only
// input yields an all-zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	embedding := make([]float32, e.dimensions)

	words := splitWords(text)
	if len(words) == 0 {
		return embedding, nil
	}

	hashes := make([]int32, len(words))
	for i, word := range words {
		hashes[i] = wordHash(word)
	}

	for i := range embedding {
		var value float64
		for _, h := range hashes {
			normalized := float64(h%1000) / 1000
			value += normalized * math.Sin(float64(i)*0.1+float64(h)*0.01)
		}
		embedding[i] = float32(math.Tanh(value / float64(len(words))))
	}

	// L2 normalize so cosine scores are directly comparable.
	var magnitude float64
	for _, v := range embedding {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)
	if magnitude > 0 {
		for i := range embedding {
			embedding[i] = float32(float64(embedding[i]) / magnitude)
		}
	}

	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// Similarity returns the cosine similarity of two vectors.
func (e *Embedder) Similarity(a, b []float32) (float32, error) {
	return domain.CosineSimilarity(a, b)
}

// Dimensions returns the embedding vector size.
func (e *Embedder) Dimensions() int {
	return e.dimensions
}

// ModelVersion tags the embedding algorithm.
func (e *Embedder) ModelVersion() string {
	return "hash-v1"
}

// Ping always succeeds; there is no remote service.
func (e *Embedder) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (e *Embedder) Close() error {
	return nil
}

// wordHash maps a word onto a signed 32-bit value.
func wordHash(word string) int32 {
	h := fnv.New32a()
	h.Write([]byte(word))
	return int32(h.Sum32())
}

// splitWords lowercases the text and splits on whitespace and common
// punctuation, dropping words of one or two characters.
func splitWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		switch r {
		case '.', ',', '!', '?', ';', ':', '(', ')', '[', ']', '{', '}':
			return true
		}
		return unicode.IsSpace(r)
	})

	words := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			words = append(words, f)
		}
	}
	return words
}
