package domain

import "time"

// QueryType classifies how an expanded query was derived.
type QueryType string

const (
	QueryOriginal   QueryType = "original"
	QuerySynonym    QueryType = "synonym"
	QueryRelated    QueryType = "related"
	QueryBroader    QueryType = "broader"
	QueryNarrower   QueryType = "narrower"
	QueryContextual QueryType = "contextual"
)

// ExpandedQuery is a derived variant of a user query intended to widen
// retrieval recall.
type ExpandedQuery struct {
	// Query is the variant text.
	Query string

	// Type records how the variant was derived.
	Type QueryType

	// Weight in (0, 1] is applied multiplicatively to similarity scores
	// of results produced by this variant.
	Weight float32

	// Reason is a human-readable diagnostic, never used for ranking.
	Reason string
}

// RetrievalResult is one ranked match from the retrieval engine.
// Results are constructed per request and never persisted.
type RetrievalResult struct {
	// Chunk is the matched chunk, with Relevance set.
	Chunk SemanticChunk

	// Score is the similarity in [0, 1], already weighted by the
	// producing expansion's weight.
	Score float32

	// SourceQuery is the expanded query text that produced this match.
	SourceQuery string

	// FromExpansion is true when SourceQuery is not the original query.
	FromExpansion bool

	// RetrievedAt is when the match was produced.
	RetrievedAt time.Time
}

// FallbackSuggestion is a topic offered to the user when no retrieval
// result is strong enough to answer directly.
type FallbackSuggestion struct {
	// Topic is the suggested topic keyword.
	Topic string

	// Description is a short human-readable description.
	Description string

	// SourceDocument is the best source document for the topic.
	SourceDocument string

	// Relevance is the topic's frequency-based score.
	Relevance float32

	// RelatedChunks holds short excerpts from related chunks.
	RelatedChunks []string
}

// ValidationReport accumulates the outcome of an embedding smoke test
// run against the whole store. Errors are collected, not thrown.
type ValidationReport struct {
	// TotalEmbeddings is the number of embeddings in the store.
	TotalEmbeddings int

	// TestedEmbeddings is the number sampled for the test battery.
	TestedEmbeddings int

	// AverageSimilarity is the mean of per-query max similarities.
	AverageSimilarity float32

	// Results holds one human-readable line per test query.
	Results []string

	// Errors holds per-query failures and low-similarity findings.
	Errors []string

	// Valid is true when no errors occurred and AverageSimilarity
	// exceeds the 0.1 floor.
	Valid bool
}

// Answer is the final response to a user question.
type Answer struct {
	// Question is the sanitised user question.
	Question string

	// Text is the answer, either model-generated or fallback text.
	Text string

	// Source identifies who produced Text: "assistant" when the
	// generative model answered, "system" for fallback responses.
	Source string

	// SourceDocuments lists the distinct documents that contributed.
	SourceDocuments []string

	// Snippets holds the supporting chunks when context was sufficient.
	Snippets []SnippetMatch

	// Suggestions holds follow-up questions, when available.
	Suggestions []string
}
