package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore,
// keyed by file path. Used by tests and by ephemeral sessions where
// persisting the index is not wanted.
type DocumentStore struct {
	mu         sync.RWMutex
	documents  map[string]domain.DocumentRecord
	embeddings map[string][]domain.EmbeddingRecord
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents:  make(map[string]domain.DocumentRecord),
		embeddings: make(map[string][]domain.EmbeddingRecord),
	}
}

// ReplaceDocument stores a document and its embeddings, superseding any
// prior record for the same file path.
func (s *DocumentStore) ReplaceDocument(_ context.Context, doc *domain.DocumentRecord, embeddings []domain.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.FilePath] = *doc
	s.embeddings[doc.FilePath] = append([]domain.EmbeddingRecord(nil), embeddings...)
	return nil
}

// GetDocumentByPath retrieves a document by its file path.
func (s *DocumentStore) GetDocumentByPath(_ context.Context, path string) (*domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns all documents ordered by file name.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.DocumentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]domain.DocumentRecord, 0, len(s.documents))
	for path := range s.documents {
		docs = append(docs, s.documents[path])
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].FileName < docs[j].FileName
	})
	return docs, nil
}

// DeleteDocumentByPath removes a document and its embeddings.
func (s *DocumentStore) DeleteDocumentByPath(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, path)
	delete(s.embeddings, path)
	return nil
}

// Clear removes everything.
func (s *DocumentStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make(map[string]domain.DocumentRecord)
	s.embeddings = make(map[string][]domain.EmbeddingRecord)
	return nil
}

// ListEmbeddings returns every embedding joined with its document,
// ordered by file path then chunk index.
func (s *DocumentStore) ListEmbeddings(_ context.Context) ([]driven.StoredEmbedding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.embeddings))
	for path := range s.embeddings {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var out []driven.StoredEmbedding
	for _, path := range paths {
		doc := s.documents[path]
		for _, emb := range s.embeddings[path] {
			out = append(out, driven.StoredEmbedding{
				EmbeddingRecord: emb,
				FileName:        doc.FileName,
				FilePath:        doc.FilePath,
			})
		}
	}
	return out, nil
}

// CountEmbeddings returns the total number of stored embeddings.
func (s *DocumentStore) CountEmbeddings(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, embs := range s.embeddings {
		count += len(embs)
	}
	return count, nil
}

// Close is a no-op for the in-memory store.
func (s *DocumentStore) Close() error {
	return nil
}
