package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askme-cli/internal/logger"
)

// Ensure Retrieval implements the interface.
var _ driving.Retriever = (*Retrieval)(nil)

// validationFloor is the per-query minimum max-similarity and the
// overall average threshold for a passing validation run.
const validationFloor float32 = 0.1

// maxValidationSample bounds how many stored embeddings a validation
// run scans.
const maxValidationSample = 100

// defaultValidationQueries is the fixed battery used when the caller
// supplies none.
var defaultValidationQueries = []string{
	"introduction",
	"summary",
	"overview",
	"main topic",
	"key points",
}

// Retrieval runs multi-query retrieval against the knowledge store: it
// expands the question, scans every stored embedding per expansion,
// and merges the weighted rankings.
type Retrieval struct {
	store    driven.DocumentStore
	embedder driven.EmbeddingService
	expander *Expander
}

// NewRetrieval creates a retrieval engine.
func NewRetrieval(store driven.DocumentStore, embedder driven.EmbeddingService, expander *Expander) *Retrieval {
	return &Retrieval{
		store:    store,
		embedder: embedder,
		expander: expander,
	}
}

// Retrieve expands query, scans the store for each expansion in
// parallel, and returns the merged ranking truncated to maxChunks.
func (r *Retrieval) Retrieve(ctx context.Context, query string, maxChunks int, minSimilarity float32) ([]domain.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.RetrievalResult{}, nil
	}

	logger.Section("Retrieval")
	expansions := r.expander.Expand(query)

	stored, err := r.store.ListEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	logger.Debug("Scanning %d embeddings with %d queries", len(stored), len(expansions))

	// One scan per expansion, run in parallel. A failing expansion is
	// dropped rather than failing the whole retrieval.
	perQuery := make([][]domain.RetrievalResult, len(expansions))
	var wg sync.WaitGroup
	for i, expansion := range expansions {
		wg.Add(1)
		go func(i int, expansion domain.ExpandedQuery) {
			defer wg.Done()
			results, err := r.scan(ctx, expansion, stored, maxChunks, minSimilarity)
			if err != nil {
				logger.Warn("Expansion %q failed: %v", expansion.Query, err)
				return
			}
			perQuery[i] = results
		}(i, expansion)
	}
	wg.Wait()

	var all []domain.RetrievalResult
	for _, results := range perQuery {
		all = append(all, results...)
	}

	merged := mergeResults(all)

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		if merged[i].Chunk.FilePath != merged[j].Chunk.FilePath {
			return merged[i].Chunk.FilePath < merged[j].Chunk.FilePath
		}
		return merged[i].Chunk.Index < merged[j].Chunk.Index
	})

	if maxChunks > 0 && len(merged) > maxChunks {
		merged = merged[:maxChunks]
	}

	logger.Info("Retrieved %d chunks", len(merged))
	return merged, nil
}

// scan runs one expanded query over the stored embeddings and returns
// its weighted top matches.
func (r *Retrieval) scan(
	ctx context.Context,
	expansion domain.ExpandedQuery,
	stored []driven.StoredEmbedding,
	maxChunks int,
	minSimilarity float32,
) ([]domain.RetrievalResult, error) {
	queryVector, err := r.embedder.Embed(ctx, expansion.Query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	now := time.Now().UTC()
	results := make([]domain.RetrievalResult, 0)

	for _, emb := range stored {
		score, err := r.embedder.Similarity(queryVector, emb.Vector)
		if err != nil {
			// A corrupt or mismatched vector fails only its own
			// comparison.
			logger.Warn("Similarity failed for %s chunk %d: %v", emb.FilePath, emb.ChunkIndex, err)
			continue
		}
		if score < minSimilarity {
			continue
		}

		results = append(results, domain.RetrievalResult{
			Chunk: domain.SemanticChunk{
				ID:             chunkIdentity(emb),
				Content:        emb.TextChunk,
				SourceDocument: emb.FileName,
				FilePath:       emb.FilePath,
				Index:          emb.ChunkIndex,
				TokenCount:     domain.EstimateTokens(emb.TextChunk),
				Relevance:      score * expansion.Weight,
			},
			Score:         score * expansion.Weight,
			SourceQuery:   expansion.Query,
			FromExpansion: expansion.Type != domain.QueryOriginal,
			RetrievedAt:   now,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Chunk.FilePath != results[j].Chunk.FilePath {
			return results[i].Chunk.FilePath < results[j].Chunk.FilePath
		}
		return results[i].Chunk.Index < results[j].Chunk.Index
	})

	if maxChunks > 0 && len(results) > maxChunks {
		results = results[:maxChunks]
	}
	return results, nil
}

// mergeResults deduplicates by chunk identity, keeping the maximum
// score seen across queries. Max, not sum: a chunk matched by several
// expansions must not be double-counted.
func mergeResults(results []domain.RetrievalResult) []domain.RetrievalResult {
	merged := make(map[string]domain.RetrievalResult)
	order := make([]string, 0, len(results))

	for _, result := range results {
		key := result.Chunk.ID
		existing, ok := merged[key]
		if !ok {
			merged[key] = result
			order = append(order, key)
			continue
		}
		if result.Score > existing.Score {
			merged[key] = result
		}
	}

	out := make([]domain.RetrievalResult, 0, len(merged))
	for _, key := range order {
		out = append(out, merged[key])
	}
	return out
}

// ValidateEmbeddings runs a battery of generic queries against the
// store and reports per-query max and average similarity. Errors are
// accumulated into the report, never returned mid-run.
func (r *Retrieval) ValidateEmbeddings(ctx context.Context, testQueries []string) (*domain.ValidationReport, error) {
	report := &domain.ValidationReport{}

	total, err := r.store.CountEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("count embeddings: %w", err)
	}
	report.TotalEmbeddings = total

	if total == 0 {
		report.Valid = false
		report.Errors = append(report.Errors, "No embeddings found in database")
		return report, nil
	}

	if testQueries == nil {
		testQueries = defaultValidationQueries
	}

	stored, err := r.store.ListEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	if len(stored) > maxValidationSample {
		stored = stored[:maxValidationSample]
	}
	report.TestedEmbeddings = len(stored)

	var totalMax float32
	validTests := 0

	for _, query := range testQueries {
		queryVector, err := r.embedder.Embed(ctx, query)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Error testing query '%s': %v", query, err))
			continue
		}

		var maxSim, sumSim float32
		compared := 0
		for _, emb := range stored {
			score, err := r.embedder.Similarity(queryVector, emb.Vector)
			if err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("Error testing query '%s': %v", query, err))
				continue
			}
			if compared == 0 || score > maxSim {
				maxSim = score
			}
			sumSim += score
			compared++
		}
		if compared == 0 {
			continue
		}

		avgSim := sumSim / float32(compared)
		report.Results = append(report.Results,
			fmt.Sprintf("Query '%s': Max similarity = %.3f, Avg similarity = %.3f", query, maxSim, avgSim))

		totalMax += maxSim
		validTests++

		if maxSim < validationFloor {
			report.Errors = append(report.Errors,
				fmt.Sprintf("No good matches found for test query: '%s' (max similarity: %.3f)", query, maxSim))
		}
	}

	if validTests > 0 {
		report.AverageSimilarity = totalMax / float32(validTests)
	}
	report.Valid = len(report.Errors) == 0 && report.AverageSimilarity > validationFloor

	return report, nil
}

// FallbackSuggestions builds candidate topics from per-document
// keyword frequency over file names and sampled chunks. Independent of
// the similarity scan.
func (r *Retrieval) FallbackSuggestions(ctx context.Context, query string, maxSuggestions int) ([]domain.FallbackSuggestion, error) {
	docs, err := r.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if len(docs) == 0 {
		return []domain.FallbackSuggestion{}, nil
	}

	stored, err := r.store.ListEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}

	// First three chunks per document, in chunk order.
	sampled := make(map[string][]driven.StoredEmbedding)
	for _, emb := range stored {
		if len(sampled[emb.FilePath]) < 3 {
			sampled[emb.FilePath] = append(sampled[emb.FilePath], emb)
		}
	}

	topics := make(map[string]int)
	for _, doc := range docs {
		for _, word := range extractKeywords(doc.FileName) {
			topics[word]++
		}
		for _, emb := range sampled[doc.FilePath] {
			words := extractKeywords(emb.TextChunk)
			if len(words) > 10 {
				words = words[:10]
			}
			for _, word := range words {
				topics[word]++
			}
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
	if maxSuggestions > 0 && len(ranked) > maxSuggestions {
		ranked = ranked[:maxSuggestions]
	}

	suggestions := make([]domain.FallbackSuggestion, 0, len(ranked))
	for _, topic := range ranked {
		related := relatedDocuments(docs, sampled, topic, 3)

		source := "Multiple documents"
		if len(related) > 0 {
			source = related[0].FileName
		}

		var excerpts []string
		for _, doc := range related {
			chunks := sampled[doc.FilePath]
			if len(chunks) > 2 {
				chunks = chunks[:2]
			}
			for _, emb := range chunks {
				excerpts = append(excerpts, excerpt(emb.TextChunk, 100))
			}
		}

		suggestions = append(suggestions, domain.FallbackSuggestion{
			Topic:          topic,
			Description:    fmt.Sprintf("Information about %s", topic),
			SourceDocument: source,
			Relevance:      float32(topics[topic]) / float32(len(docs)),
			RelatedChunks:  excerpts,
		})
	}

	return suggestions, nil
}

// relatedDocuments finds up to limit documents whose name or sampled
// chunks mention topic.
func relatedDocuments(
	docs []domain.DocumentRecord,
	sampled map[string][]driven.StoredEmbedding,
	topic string,
	limit int,
) []domain.DocumentRecord {
	var related []domain.DocumentRecord
	for _, doc := range docs {
		if len(related) >= limit {
			break
		}
		if containsFold(doc.FileName, topic) {
			related = append(related, doc)
			continue
		}
		for _, emb := range sampled[doc.FilePath] {
			if containsFold(emb.TextChunk, topic) {
				related = append(related, doc)
				break
			}
		}
	}
	return related
}

// excerpt truncates text to limit bytes and appends an ellipsis.
func excerpt(text string, limit int) string {
	if len(text) > limit {
		text = text[:limit]
	}
	return text + "..."
}

// chunkIdentity is the stable identity of a stored chunk, used for
// merge deduplication across expanded queries.
func chunkIdentity(emb driven.StoredEmbedding) string {
	return fmt.Sprintf("%s#%d", emb.DocumentID, emb.ChunkIndex)
}
