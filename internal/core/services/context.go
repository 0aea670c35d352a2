package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/logger"
)

// decentScore is the lower sufficiency bar; two results at or above it
// count as much as one result at the main threshold.
const decentScore float32 = 0.2

// maxFallbackTopics bounds the topics listed in context blocks and
// fallback responses.
const maxFallbackTopics = 5

// Assembler builds the bounded prompt context sent to the generative
// model, and judges whether retrieval quality is sufficient to invoke
// it at all.
type Assembler struct {
	config domain.ContextConfiguration
}

// NewAssembler creates a context assembler.
func NewAssembler(config domain.ContextConfiguration) *Assembler {
	return &Assembler{config: config}
}

// BuildContext renders the final prompt: system prompt, optional
// conversation history, top-ranked chunks with provenance, fallback
// topics when sufficiency fails, the user question and an instruction
// line. Chunk content is passed through unaltered except for the
// assembler's own token budget.
func (a *Assembler) BuildContext(
	query string,
	results []domain.RetrievalResult,
	conversationContext string,
	fallbackSuggestions []domain.FallbackSuggestion,
) string {
	var b strings.Builder

	b.WriteString(a.config.SystemPrompt)
	b.WriteString("\n\n")

	if a.config.IncludeConversationHistory && strings.TrimSpace(conversationContext) != "" {
		b.WriteString("Previous conversation context:\n")
		b.WriteString(conversationContext)
		b.WriteString("\n\n")
	}

	if len(results) > 0 {
		b.WriteString("Relevant Document Chunks:\n\n")
		a.writeChunks(&b, results)
	}

	if !a.HasSufficientContext(results) && len(fallbackSuggestions) > 0 {
		b.WriteString("Available Topics (no direct match found):\n\n")
		suggestions := fallbackSuggestions
		if len(suggestions) > maxFallbackTopics {
			suggestions = suggestions[:maxFallbackTopics]
		}
		for _, suggestion := range suggestions {
			fmt.Fprintf(&b, "- %s: %s\n", suggestion.Topic, suggestion.Description)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User Question: %s\n\n", query)
	b.WriteString("Answer the user's question using only the information provided above.\n")

	if !a.HasSufficientContext(results) {
		b.WriteString("If the information above doesn't contain enough detail to answer the question, say: \"Not available in loaded documents.\"\n")
	}

	return b.String()
}

// writeChunks renders the top-ranked chunks with header breadcrumb,
// source and score, stopping at the chunk and token budgets.
func (a *Assembler) writeChunks(b *strings.Builder, results []domain.RetrievalResult) {
	ordered := make([]domain.RetrievalResult, len(results))
	copy(ordered, results)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Score > ordered[j].Score
	})

	if a.config.MaxChunksToInclude > 0 && len(ordered) > a.config.MaxChunksToInclude {
		ordered = ordered[:a.config.MaxChunksToInclude]
	}

	budget := a.config.MaxContextTokens
	used := 0

	for i, result := range ordered {
		chunk := result.Chunk

		content := chunk.Content
		if budget > 0 {
			remaining := budget - used
			if remaining <= 0 {
				logger.Debug("Context token budget exhausted after %d chunks", i)
				break
			}
			if cost := domain.EstimateTokens(content); cost > remaining {
				// Truncate the final chunk to fit the budget.
				content = truncateToTokens(content, remaining)
				logger.Debug("Truncated chunk %d to fit token budget", i+1)
			}
		}
		used += domain.EstimateTokens(content)

		fmt.Fprintf(b, "[Chunk %d]\n", i+1)
		if len(chunk.Headers) > 0 {
			fmt.Fprintf(b, "Context: %s\n", chunk.HeaderBreadcrumb())
		}
		fmt.Fprintf(b, "Source: %s\n", chunk.SourceDocument)
		fmt.Fprintf(b, "Relevance: %.2f\n\n", result.Score)
		b.WriteString(content)
		b.WriteString("\n\n")
	}
}

// HasSufficientContext reports whether retrieval quality is strong
// enough to invoke the generative model: one result at or above the
// threshold, or at least two at or above the decent bar. Moderately
// relevant multi-source agreement counts as much as one strong match.
func (a *Assembler) HasSufficientContext(results []domain.RetrievalResult) bool {
	if len(results) == 0 {
		return false
	}

	threshold := a.config.MinSimilarityThreshold
	decent := 0
	for _, result := range results {
		if result.Score >= threshold {
			return true
		}
		if result.Score >= decentScore {
			decent++
		}
	}
	return decent >= 2
}

// FormatFallbackResponse renders the final answer text for an
// insufficient-context question, bypassing the generative model.
func (a *Assembler) FormatFallbackResponse(query string, suggestions []domain.FallbackSuggestion, hasDocuments bool) string {
	if !hasDocuments {
		return "No documents have been loaded. Please select a folder containing documents first."
	}

	if len(suggestions) == 0 {
		return "I couldn't find information related to your question in the loaded documents. Please try rephrasing your question or ask about a different topic."
	}

	var b strings.Builder
	b.WriteString("Couldn't find an exact answer to your question. Do you mean one of these related topics:\n\n")

	if len(suggestions) > maxFallbackTopics {
		suggestions = suggestions[:maxFallbackTopics]
	}
	for _, suggestion := range suggestions {
		fmt.Fprintf(&b, "• **%s** - %s\n", suggestion.Topic, suggestion.Description)
		if len(suggestion.RelatedChunks) > 0 {
			fmt.Fprintf(&b, "  *Available in: %s*\n", suggestion.SourceDocument)
		}
	}

	b.WriteString("\nPlease ask a more specific question about any of these topics, or try rephrasing your original question.\n")
	return b.String()
}

// ExtractKeyTopics ranks the most frequent keywords across the
// retrieved chunks' headers and leading content.
func (a *Assembler) ExtractKeyTopics(results []domain.RetrievalResult, maxTopics int) []string {
	topics := make(map[string]int)

	for _, result := range results {
		chunk := result.Chunk

		for _, header := range chunk.Headers {
			for _, word := range extractKeywords(header) {
				topics[word]++
			}
		}

		sample := chunk.Content
		if len(sample) > 200 {
			sample = sample[:200]
		}
		words := extractKeywords(sample)
		if len(words) > 10 {
			words = words[:10]
		}
		for _, word := range words {
			topics[word]++
		}
	}

	ranked := make([]string, 0, len(topics))
	for topic := range topics {
		ranked = append(ranked, topic)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if topics[ranked[i]] != topics[ranked[j]] {
			return topics[ranked[i]] > topics[ranked[j]]
		}
		return ranked[i] < ranked[j]
	})

	if maxTopics > 0 && len(ranked) > maxTopics {
		ranked = ranked[:maxTopics]
	}
	return ranked
}

// truncateToTokens cuts text to approximately the given token budget,
// preferring a word boundary near the cut.
func truncateToTokens(text string, tokens int) string {
	limit := tokens * 4
	if len(text) <= limit {
		return text
	}

	cut := text[:limit]
	if i := strings.LastIndexByte(cut, ' '); i > limit/2 {
		cut = cut[:i]
	}
	return cut
}
