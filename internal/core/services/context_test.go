package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

func resultWithScore(score float32) domain.RetrievalResult {
	return domain.RetrievalResult{
		Chunk: domain.SemanticChunk{
			ID:             "chunk-1",
			Content:        "Items may be returned within 30 days.",
			SourceDocument: "returns.md",
			FilePath:       "/docs/returns.md",
		},
		Score: score,
	}
}

func TestAssembler_HasSufficientContext(t *testing.T) {
	a := NewAssembler(domain.DefaultContextConfiguration())

	tests := []struct {
		name    string
		scores  []float32
		want    bool
	}{
		{"no results", nil, false},
		{"one strong match", []float32{0.35}, true},
		{"two decent matches", []float32{0.25, 0.22}, true},
		{"one decent match alone", []float32{0.25}, false},
		{"two weak matches", []float32{0.15, 0.18}, false},
		{"threshold boundary", []float32{0.3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := make([]domain.RetrievalResult, 0, len(tt.scores))
			for _, score := range tt.scores {
				results = append(results, resultWithScore(score))
			}

			assert.Equal(t, tt.want, a.HasSufficientContext(results))
		})
	}
}

func TestAssembler_BuildContext(t *testing.T) {
	config := domain.DefaultContextConfiguration()
	a := NewAssembler(config)

	result := resultWithScore(0.82)
	result.Chunk.Headers = []string{"# Returns", "## Window"}

	out := a.BuildContext("What is the return window?", []domain.RetrievalResult{result}, "", nil)

	assert.True(t, strings.HasPrefix(out, config.SystemPrompt))
	assert.Contains(t, out, "Relevant Document Chunks:")
	assert.Contains(t, out, "[Chunk 1]")
	assert.Contains(t, out, "Context: # Returns > ## Window")
	assert.Contains(t, out, "Source: returns.md")
	assert.Contains(t, out, "Relevance: 0.82")
	assert.Contains(t, out, "Items may be returned within 30 days.")
	assert.Contains(t, out, "User Question: What is the return window?")
	assert.NotContains(t, out, "Not available in loaded documents.",
		"sufficient context should not add the insufficiency instruction")
}

func TestAssembler_BuildContext_Insufficient(t *testing.T) {
	a := NewAssembler(domain.DefaultContextConfiguration())

	suggestions := []domain.FallbackSuggestion{
		{Topic: "shipping", Description: "Information about shipping"},
	}

	out := a.BuildContext("anything", nil, "", suggestions)

	assert.Contains(t, out, "Available Topics (no direct match found):")
	assert.Contains(t, out, "- shipping: Information about shipping")
	assert.Contains(t, out, `say: "Not available in loaded documents."`)
}

func TestAssembler_BuildContext_ConversationHistory(t *testing.T) {
	t.Run("included when enabled", func(t *testing.T) {
		a := NewAssembler(domain.DefaultContextConfiguration())

		out := a.BuildContext("q", nil, "User: earlier question", nil)

		assert.Contains(t, out, "Previous conversation context:")
		assert.Contains(t, out, "User: earlier question")
	})

	t.Run("omitted when disabled", func(t *testing.T) {
		config := domain.DefaultContextConfiguration()
		config.IncludeConversationHistory = false
		a := NewAssembler(config)

		out := a.BuildContext("q", nil, "User: earlier question", nil)

		assert.NotContains(t, out, "Previous conversation context:")
	})
}

func TestAssembler_BuildContext_ChunkLimit(t *testing.T) {
	config := domain.DefaultContextConfiguration()
	config.MaxChunksToInclude = 2
	a := NewAssembler(config)

	results := []domain.RetrievalResult{
		resultWithScore(0.9),
		resultWithScore(0.8),
		resultWithScore(0.7),
	}

	out := a.BuildContext("q", results, "", nil)

	assert.Contains(t, out, "[Chunk 1]")
	assert.Contains(t, out, "[Chunk 2]")
	assert.NotContains(t, out, "[Chunk 3]")
}

func TestAssembler_BuildContext_TokenBudget(t *testing.T) {
	config := domain.DefaultContextConfiguration()
	config.MaxContextTokens = 50
	a := NewAssembler(config)

	long := resultWithScore(0.9)
	long.Chunk.Content = strings.Repeat("word ", 200)

	out := a.BuildContext("q", []domain.RetrievalResult{long}, "", nil)

	// The rendered chunk must be truncated well below its raw length.
	assert.Less(t, len(out), len(long.Chunk.Content))
}

func TestAssembler_FormatFallbackResponse(t *testing.T) {
	a := NewAssembler(domain.DefaultContextConfiguration())

	t.Run("no documents loaded", func(t *testing.T) {
		out := a.FormatFallbackResponse("q", nil, false)
		assert.Contains(t, out, "No documents have been loaded")
	})

	t.Run("no suggestions", func(t *testing.T) {
		out := a.FormatFallbackResponse("q", nil, true)
		assert.Contains(t, out, "couldn't find information")
	})

	t.Run("with suggestions", func(t *testing.T) {
		suggestions := []domain.FallbackSuggestion{
			{
				Topic:          "returns",
				Description:    "Information about returns",
				SourceDocument: "returns.md",
				RelatedChunks:  []string{"Items may be returned..."},
			},
		}

		out := a.FormatFallbackResponse("q", suggestions, true)

		assert.Contains(t, out, "Do you mean one of these related topics")
		assert.Contains(t, out, "**returns**")
		assert.Contains(t, out, "Available in: returns.md")
	})
}

func TestAssembler_ExtractKeyTopics(t *testing.T) {
	a := NewAssembler(domain.DefaultContextConfiguration())

	results := []domain.RetrievalResult{
		{Chunk: domain.SemanticChunk{
			Content: "Shipping rates depend on shipping method and destination.",
			Headers: []string{"# Shipping"},
		}},
		{Chunk: domain.SemanticChunk{
			Content: "Express shipping arrives in two days.",
		}},
	}

	topics := a.ExtractKeyTopics(results, 3)

	require.NotEmpty(t, topics)
	assert.Equal(t, "shipping", topics[0])
	assert.LessOrEqual(t, len(topics), 3)
}
