package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
)

func storeWithEmbeddings(t *testing.T, docs map[string][]domain.EmbeddingRecord) *mockDocumentStore {
	t.Helper()
	store := newMockDocumentStore()
	for path, embeddings := range docs {
		doc := &domain.DocumentRecord{
			ID:       "doc-" + path,
			FilePath: path,
			FileName: path[len("/docs/"):],
		}
		for i := range embeddings {
			embeddings[i].DocumentID = doc.ID
			embeddings[i].ChunkIndex = i
		}
		require.NoError(t, store.ReplaceDocument(context.Background(), doc, embeddings))
	}
	return store
}

func TestRetrieval_Retrieve(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.vectors["return window"] = []float32{1, 0, 0}

	store := storeWithEmbeddings(t, map[string][]domain.EmbeddingRecord{
		"/docs/returns.md": {
			{TextChunk: "Items may be returned within 30 days.", Vector: []float32{1, 0, 0}},
			{TextChunk: "Unrelated paragraph.", Vector: []float32{0, 1, 0}},
		},
	})

	r := NewRetrieval(store, embedder, NewExpander())

	results, err := r.Retrieve(context.Background(), "return window", 5, 0.1)
	require.NoError(t, err)

	require.NotEmpty(t, results)
	assert.Equal(t, "Items may be returned within 30 days.", results[0].Chunk.Content)
	assert.InDelta(t, 1.0, results[0].Score, 1e-3)
	assert.Equal(t, "return window", results[0].SourceQuery)
	assert.False(t, results[0].FromExpansion)
	assert.WithinDuration(t, time.Now(), results[0].RetrievedAt, time.Minute)
}

func TestRetrieval_Retrieve_EmptyQuery(t *testing.T) {
	r := NewRetrieval(newMockDocumentStore(), newMockEmbedder(), NewExpander())

	results, err := r.Retrieve(context.Background(), "  ", 5, 0.1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieval_Retrieve_EmptyStore(t *testing.T) {
	r := NewRetrieval(newMockDocumentStore(), newMockEmbedder(), NewExpander())

	results, err := r.Retrieve(context.Background(), "anything", 5, 0.1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieval_MergeKeepsMaximum(t *testing.T) {
	// The same chunk matched by the original query at full similarity
	// and by contextual expansions at weighted similarity must keep
	// the maximum score, not a sum.
	embedder := newMockEmbedder()
	embedder.vectors["returns"] = []float32{1, 0, 0}
	for _, term := range []string{"introduction", "overview", "basics", "fundamentals"} {
		embedder.vectors["returns "+term] = []float32{1, 0, 0}
	}

	store := storeWithEmbeddings(t, map[string][]domain.EmbeddingRecord{
		"/docs/returns.md": {
			{TextChunk: "Returns are accepted.", Vector: []float32{1, 0, 0}},
		},
	})

	r := NewRetrieval(store, embedder, NewExpander())

	results, err := r.Retrieve(context.Background(), "returns", 5, 0.1)
	require.NoError(t, err)

	require.Len(t, results, 1, "one stored chunk must merge to one result")
	assert.InDelta(t, 1.0, results[0].Score, 1e-3,
		"merged score must be the maximum across expansions, not a sum")
	assert.False(t, results[0].FromExpansion)
}

func TestRetrieval_WeightsApplied(t *testing.T) {
	// Only the contextual expansion matches this chunk, so its score
	// carries the 0.5 contextual weight.
	embedder := newMockEmbedder()
	embedder.vectors["returns"] = []float32{0, 1, 0}
	embedder.vectors["returns overview"] = []float32{1, 0, 0}
	embedder.vectors["returns introduction"] = []float32{0, 1, 0}
	embedder.vectors["returns basics"] = []float32{0, 1, 0}
	embedder.vectors["returns fundamentals"] = []float32{0, 1, 0}

	store := storeWithEmbeddings(t, map[string][]domain.EmbeddingRecord{
		"/docs/returns.md": {
			{TextChunk: "Returns are accepted.", Vector: []float32{1, 0, 0}},
		},
	})

	r := NewRetrieval(store, embedder, NewExpander())

	results, err := r.Retrieve(context.Background(), "returns", 5, 0.1)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.InDelta(t, 0.5, results[0].Score, 1e-3)
	assert.True(t, results[0].FromExpansion)
	assert.Equal(t, "returns overview", results[0].SourceQuery)
}

func TestRetrieval_TruncatesToMaxChunks(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.vectors["question"] = []float32{1, 0, 0}

	embeddings := make([]domain.EmbeddingRecord, 6)
	for i := range embeddings {
		embeddings[i] = domain.EmbeddingRecord{
			TextChunk: "chunk content",
			Vector:    []float32{1, 0, 0},
		}
	}
	store := storeWithEmbeddings(t, map[string][]domain.EmbeddingRecord{
		"/docs/a.md": embeddings,
	})

	r := NewRetrieval(store, embedder, NewExpander())

	results, err := r.Retrieve(context.Background(), "question", 3, 0.1)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestRetrieval_DeterministicTieBreak(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.vectors["question"] = []float32{1, 0, 0}

	store := storeWithEmbeddings(t, map[string][]domain.EmbeddingRecord{
		"/docs/b.md": {{TextChunk: "from b", Vector: []float32{1, 0, 0}}},
		"/docs/a.md": {{TextChunk: "from a", Vector: []float32{1, 0, 0}}},
	})

	r := NewRetrieval(store, embedder, NewExpander())

	for i := 0; i < 5; i++ {
		results, err := r.Retrieve(context.Background(), "question", 5, 0.1)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "/docs/a.md", results[0].Chunk.FilePath)
		assert.Equal(t, "/docs/b.md", results[1].Chunk.FilePath)
	}
}

func TestRetrieval_ValidateEmbeddings(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		r := NewRetrieval(newMockDocumentStore(), newMockEmbedder(), NewExpander())

		report, err := r.ValidateEmbeddings(context.Background(), nil)
		require.NoError(t, err)

		assert.False(t, report.Valid)
		assert.Contains(t, report.Errors, "No embeddings found in database")
	})

	t.Run("matching store passes", func(t *testing.T) {
		embedder := newMockEmbedder()
		embedder.defaultVector = []float32{1, 0, 0}

		store := storeWithEmbeddings(t, map[string][]domain.EmbeddingRecord{
			"/docs/a.md": {{TextChunk: "content", Vector: []float32{1, 0, 0}}},
		})

		r := NewRetrieval(store, embedder, NewExpander())

		report, err := r.ValidateEmbeddings(context.Background(), []string{"overview"})
		require.NoError(t, err)

		assert.True(t, report.Valid)
		assert.Equal(t, 1, report.TotalEmbeddings)
		assert.Equal(t, 1, report.TestedEmbeddings)
		require.Len(t, report.Results, 1)
		assert.Contains(t, report.Results[0], "Query 'overview'")
	})

	t.Run("orthogonal store fails", func(t *testing.T) {
		embedder := newMockEmbedder()
		embedder.defaultVector = []float32{1, 0, 0}

		store := storeWithEmbeddings(t, map[string][]domain.EmbeddingRecord{
			"/docs/a.md": {{TextChunk: "content", Vector: []float32{0, 1, 0}}},
		})

		r := NewRetrieval(store, embedder, NewExpander())

		report, err := r.ValidateEmbeddings(context.Background(), []string{"overview"})
		require.NoError(t, err)

		assert.False(t, report.Valid)
		assert.NotEmpty(t, report.Errors)
	})
}

func TestRetrieval_FallbackSuggestions(t *testing.T) {
	store := storeWithEmbeddings(t, map[string][]domain.EmbeddingRecord{
		"/docs/shipping.md": {
			{TextChunk: "Shipping rates and shipping methods explained.", Vector: []float32{1, 0, 0}},
		},
		"/docs/returns.md": {
			{TextChunk: "Returns accepted within thirty days.", Vector: []float32{0, 1, 0}},
		},
	})

	r := NewRetrieval(store, newMockEmbedder(), NewExpander())

	suggestions, err := r.FallbackSuggestions(context.Background(), "anything", 3)
	require.NoError(t, err)

	require.NotEmpty(t, suggestions)
	assert.LessOrEqual(t, len(suggestions), 3)

	// "shipping" appears in both the file name and its chunk, making
	// it the dominant topic.
	assert.Equal(t, "shipping", suggestions[0].Topic)
	assert.Equal(t, "Information about shipping", suggestions[0].Description)
	assert.Equal(t, "shipping.md", suggestions[0].SourceDocument)
	assert.NotEmpty(t, suggestions[0].RelatedChunks)
}

func TestRetrieval_FallbackSuggestions_EmptyStore(t *testing.T) {
	r := NewRetrieval(newMockDocumentStore(), newMockEmbedder(), NewExpander())

	suggestions, err := r.FallbackSuggestions(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestRetrieval_CorruptVectorIsolated(t *testing.T) {
	embedder := newMockEmbedder()
	embedder.vectors["question"] = []float32{1, 0, 0}

	store := storeWithEmbeddings(t, map[string][]domain.EmbeddingRecord{
		"/docs/a.md": {
			{TextChunk: "good chunk", Vector: []float32{1, 0, 0}},
			{TextChunk: "bad chunk", Vector: []float32{1, 0}}, // wrong dimensionality
		},
	})

	r := NewRetrieval(store, embedder, NewExpander())

	results, err := r.Retrieve(context.Background(), "question", 5, 0.1)
	require.NoError(t, err, "a corrupt vector must not fail the batch")

	require.Len(t, results, 1)
	assert.Equal(t, "good chunk", results[0].Chunk.Content)
}

var _ driven.DocumentStore = (*mockDocumentStore)(nil)
var _ driven.EmbeddingService = (*mockEmbedder)(nil)
var _ driven.LLMService = (*mockLLM)(nil)
var _ driven.ConversationStore = (*mockConversations)(nil)
var _ driven.DocumentSource = (*mockSource)(nil)
var _ driven.Cache = (*mockCache)(nil)
