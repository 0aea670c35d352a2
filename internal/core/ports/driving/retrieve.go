package driving

import (
	"context"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

// Retriever runs multi-query retrieval against the knowledge store.
type Retriever interface {
	// Retrieve expands query, scans the store per expansion, and
	// returns the merged ranking truncated to maxChunks. Results below
	// minSimilarity (before weighting) are dropped.
	Retrieve(ctx context.Context, query string, maxChunks int, minSimilarity float32) ([]domain.RetrievalResult, error)

	// ValidateEmbeddings runs a battery of generic queries against the
	// whole store and reports per-query max/average similarity with a
	// pass/fail verdict. A smoke test for a freshly built index, not a
	// hot-path operation. A nil testQueries uses the fixed battery.
	ValidateEmbeddings(ctx context.Context, testQueries []string) (*domain.ValidationReport, error)

	// FallbackSuggestions builds candidate topics from per-document
	// keyword frequency, for use when primary retrieval is weak.
	FallbackSuggestions(ctx context.Context, query string, maxSuggestions int) ([]domain.FallbackSuggestion, error)
}
