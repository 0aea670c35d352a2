package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/askme-cli/internal/chunker"
	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askme-cli/internal/logger"
)

// Ensure Knowledge implements the interface.
var _ driving.KnowledgeService = (*Knowledge)(nil)

// snippetFloor is the minimum similarity for a snippet match.
const snippetFloor float32 = 0.1

// placeholderContent marks a document whose text could not be
// extracted. The document is still recorded as processed so the ingest
// does not retry it on every pass.
const placeholderContent = "No content extracted"

// Knowledge maintains the on-disk index of documents and chunk
// embeddings.
type Knowledge struct {
	store    driven.DocumentStore
	source   driven.DocumentSource
	embedder driven.EmbeddingService
	splitter *chunker.Chunker
	cache    driven.Cache

	// mu guards fileLocks; each path gets its own mutex so concurrent
	// ProcessFile calls for different files run in parallel while
	// calls for the same file are serialized.
	mu        sync.Mutex
	fileLocks map[string]*sync.Mutex
}

// NewKnowledge creates a knowledge service. The cache is optional and
// may be nil.
func NewKnowledge(
	store driven.DocumentStore,
	source driven.DocumentSource,
	embedder driven.EmbeddingService,
	splitter *chunker.Chunker,
	cache driven.Cache,
) *Knowledge {
	return &Knowledge{
		store:     store,
		source:    source,
		embedder:  embedder,
		splitter:  splitter,
		cache:     cache,
		fileLocks: make(map[string]*sync.Mutex),
	}
}

// stagedDocument is a fully prepared replacement for one file, built
// before anything touches the store.
type stagedDocument struct {
	doc         *domain.DocumentRecord
	embeddings  []domain.EmbeddingRecord
	placeholder bool
}

// ProcessFolder clears the index and re-ingests every supported file
// under path. All chunking and embedding happens before the store is
// touched, so a cancellation mid-ingest leaves the prior index intact.
func (s *Knowledge) ProcessFolder(ctx context.Context, path string) (*driving.IngestResult, error) {
	start := time.Now()
	logger.Section("Folder Ingest")
	logger.Info("Processing folder: %s", path)

	files, err := s.source.Resolve(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("resolve folder: %w", err)
	}
	logger.Debug("Found %d supported files", len(files))

	result := &driving.IngestResult{}
	staged := make([]stagedDocument, 0, len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			logger.Warn("Ingest cancelled, store left unchanged")
			return nil, err
		}

		sd, err := s.prepare(ctx, file)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			logger.Warn("Skipping %s: %v", file.FilePath, err)
			result.FilesSkipped++
			continue
		}

		staged = append(staged, sd)
		if sd.placeholder {
			result.FilesFailed++
		}
	}

	// Commit phase. Detached from cancellation so the store is never
	// left half-cleared.
	commitCtx := context.WithoutCancel(ctx)
	if err := s.store.Clear(commitCtx); err != nil {
		return nil, fmt.Errorf("clear index: %w", err)
	}
	if s.cache != nil {
		s.cache.Clear()
	}

	for _, sd := range staged {
		if err := s.store.ReplaceDocument(commitCtx, sd.doc, sd.embeddings); err != nil {
			logger.Warn("Failed to store %s: %v", sd.doc.FilePath, err)
			result.FilesSkipped++
			continue
		}
		result.FilesIndexed++
	}

	result.Duration = time.Since(start)
	logger.Info("Ingest complete: %d indexed, %d skipped, %d with no extractable content in %s",
		result.FilesIndexed, result.FilesSkipped, result.FilesFailed, result.Duration.Round(time.Millisecond))

	return result, nil
}

// ProcessFile re-chunks and re-embeds a single file. A no-op unless
// the file's modification time is strictly newer than the stored one.
func (s *Knowledge) ProcessFile(ctx context.Context, path string) error {
	unlock := s.lockPath(path)
	defer unlock()

	file, err := s.source.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("load file: %w", err)
	}

	existing, err := s.store.GetDocumentByPath(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get document: %w", err)
	}
	if existing != nil && !file.LastModified.After(existing.LastModified) {
		logger.Debug("File unchanged, skipping: %s", path)
		return nil
	}

	sd, err := s.prepare(ctx, *file)
	if err != nil {
		return err
	}

	if err := s.store.ReplaceDocument(ctx, sd.doc, sd.embeddings); err != nil {
		return fmt.Errorf("store document: %w", err)
	}
	if s.cache != nil {
		s.cache.Delete(docCacheKey(path))
	}

	s.smokeCheck(ctx, sd.doc, sd.embeddings)
	return nil
}

// DeleteFile removes a file and its embeddings from the index.
func (s *Knowledge) DeleteFile(ctx context.Context, path string) error {
	unlock := s.lockPath(path)
	defer unlock()

	if err := s.store.DeleteDocumentByPath(ctx, path); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if s.cache != nil {
		s.cache.Delete(docCacheKey(path))
	}

	logger.Debug("Deleted from index: %s", path)
	return nil
}

// FindRelevantChunks returns up to maxResults snippet matches for
// question, ranked by similarity above the floor.
func (s *Knowledge) FindRelevantChunks(ctx context.Context, question string, maxResults int) ([]domain.SnippetMatch, error) {
	if strings.TrimSpace(question) == "" {
		return []domain.SnippetMatch{}, nil
	}

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	stored, err := s.store.ListEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}

	matches := make([]domain.SnippetMatch, 0)
	for _, emb := range stored {
		score, err := s.embedder.Similarity(queryVector, emb.Vector)
		if err != nil {
			// Dimension mismatches fail the one comparison, not the
			// whole scan.
			logger.Warn("Similarity failed for %s chunk %d: %v", emb.FilePath, emb.ChunkIndex, err)
			continue
		}
		if score > snippetFloor {
			matches = append(matches, domain.SnippetMatch{
				FileName:   emb.FileName,
				FilePath:   emb.FilePath,
				Text:       emb.TextChunk,
				ChunkIndex: emb.ChunkIndex,
				Score:      score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].FilePath != matches[j].FilePath {
			return matches[i].FilePath < matches[j].FilePath
		}
		return matches[i].ChunkIndex < matches[j].ChunkIndex
	})

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	return matches, nil
}

// IsProcessed reports whether path is present in the index.
func (s *Knowledge) IsProcessed(ctx context.Context, path string) (bool, error) {
	if _, err := s.lookupDocument(ctx, path); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// LastProcessed returns the recorded modification time for path.
func (s *Knowledge) LastProcessed(ctx context.Context, path string) (time.Time, error) {
	doc, err := s.lookupDocument(ctx, path)
	if err != nil {
		return time.Time{}, err
	}
	return doc.LastModified, nil
}

// Documents lists all indexed document records.
func (s *Knowledge) Documents(ctx context.Context) ([]domain.DocumentRecord, error) {
	return s.store.ListDocuments(ctx)
}

// HandleFileEvent applies a watcher notification to the index.
func (s *Knowledge) HandleFileEvent(ctx context.Context, event domain.FileEvent) error {
	switch event.Type {
	case domain.FileAdded, domain.FileChanged:
		return s.ProcessFile(ctx, event.Path)
	case domain.FileDeleted:
		return s.DeleteFile(ctx, event.Path)
	default:
		return fmt.Errorf("%w: unknown file event %d", domain.ErrInvalidInput, event.Type)
	}
}

// prepare chunks and embeds one file into a staged replacement without
// touching the store.
func (s *Knowledge) prepare(ctx context.Context, file domain.FileDocument) (stagedDocument, error) {
	content := file.Content
	placeholder := false
	if strings.TrimSpace(content) == "" {
		content = placeholderContent
		placeholder = true
		logger.Warn("No content extracted from %s", file.FilePath)
	}

	chunks := s.splitter.Chunk(content, file.FileName, file.FilePath)
	logger.Debug("Chunked %s into %d chunks", file.FileName, len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return stagedDocument{}, fmt.Errorf("embed chunks for %s: %w", file.FilePath, err)
	}

	now := time.Now().UTC()
	doc := &domain.DocumentRecord{
		ID:            uuid.New().String(),
		FilePath:      file.FilePath,
		FileName:      file.FileName,
		FileType:      file.FileType,
		FileSizeBytes: file.FileSizeBytes,
		LastModified:  file.LastModified,
		ChunkCount:    len(chunks),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	embeddings := make([]domain.EmbeddingRecord, len(chunks))
	for i, chunk := range chunks {
		embeddings[i] = domain.EmbeddingRecord{
			DocumentID:   doc.ID,
			ChunkIndex:   i,
			TextChunk:    chunk.Content,
			Vector:       vectors[i],
			Dimensions:   s.embedder.Dimensions(),
			ModelVersion: s.embedder.ModelVersion(),
			CreatedAt:    now,
		}
	}

	return stagedDocument{doc: doc, embeddings: embeddings, placeholder: placeholder}, nil
}

// smokeCheck embeds the file name stem and warns when none of the
// document's chunks come near it. Catches broken embeddings right
// after ingest instead of at query time.
func (s *Knowledge) smokeCheck(ctx context.Context, doc *domain.DocumentRecord, embeddings []domain.EmbeddingRecord) {
	if len(embeddings) == 0 {
		return
	}

	stem := strings.TrimSuffix(doc.FileName, filepath.Ext(doc.FileName))
	testVector, err := s.embedder.Embed(ctx, stem)
	if err != nil {
		logger.Warn("Embedding smoke check failed for %s: %v", doc.FileName, err)
		return
	}

	var best float32
	for _, emb := range embeddings {
		score, err := s.embedder.Similarity(testVector, emb.Vector)
		if err != nil {
			continue
		}
		if score > best {
			best = score
		}
	}

	if best < snippetFloor {
		logger.Warn("Low embedding similarity for %s (max %.3f)", doc.FileName, best)
	} else {
		logger.Debug("Embedding smoke check for %s: max similarity %.3f", doc.FileName, best)
	}
}

// lookupDocument reads a document record through the cache.
func (s *Knowledge) lookupDocument(ctx context.Context, path string) (*domain.DocumentRecord, error) {
	key := docCacheKey(path)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if doc, ok := cached.(*domain.DocumentRecord); ok {
				return doc, nil
			}
		}
	}

	doc, err := s.store.GetDocumentByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Put(key, doc)
	}
	return doc, nil
}

// lockPath acquires the per-path mutex, creating it on first use.
func (s *Knowledge) lockPath(path string) func() {
	s.mu.Lock()
	lock, ok := s.fileLocks[path]
	if !ok {
		lock = &sync.Mutex{}
		s.fileLocks[path] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func docCacheKey(path string) string {
	return "doc:" + path
}
