package driven

import "context"

// EmbeddingService generates fixed-dimension vector embeddings from
// text and exposes the similarity function used for ranking.
//
// Embedding must be deterministic for identical input, and must return
// an all-zero vector (not an error) for empty or whitespace-only input.
// The retrieval logic depends only on this numeric contract and on a
// consistent Dimensions/ModelVersion pair across an index, never on
// which algorithm produced the vectors.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - A deterministic hash-based fallback requiring no model server
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Similarity returns the cosine similarity of two vectors in
	// [-1, 1]; zero-magnitude vectors compare as 0.
	Similarity(a, b []float32) (float32, error)

	// Dimensions returns the embedding vector size (e.g. 384, 768).
	Dimensions() int

	// ModelVersion tags the embedding model and version. Stored with
	// every embedding; an index must not mix model versions.
	ModelVersion() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
