package driven

import (
	"context"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

// StoredEmbedding is an EmbeddingRecord joined with its owning
// document's identity, as returned from a full index scan.
type StoredEmbedding struct {
	domain.EmbeddingRecord

	// FileName is the owning document's display name.
	FileName string

	// FilePath is the owning document's path.
	FilePath string
}

// DocumentStore persists document records and their chunk embeddings.
// Backed by SQLite; the embedding table cascades on document delete.
//
// Implementations must give readers a consistent snapshot relative to
// any in-flight replace: a document is never visible with some
// embeddings deleted and new ones not yet inserted.
type DocumentStore interface {
	// ReplaceDocument atomically stores a document record and its full
	// set of embeddings, removing any prior record and embeddings for
	// the same file path first.
	ReplaceDocument(ctx context.Context, doc *domain.DocumentRecord, embeddings []domain.EmbeddingRecord) error

	// GetDocumentByPath retrieves a document by its file path.
	// Returns domain.ErrNotFound when the path has not been indexed.
	GetDocumentByPath(ctx context.Context, path string) (*domain.DocumentRecord, error)

	// ListDocuments returns all indexed documents ordered by file name.
	ListDocuments(ctx context.Context) ([]domain.DocumentRecord, error)

	// DeleteDocumentByPath removes a document and, by cascade, all of
	// its embeddings. Deleting an unknown path is a no-op.
	DeleteDocumentByPath(ctx context.Context, path string) error

	// Clear removes every document and embedding from the store.
	Clear(ctx context.Context) error

	// ListEmbeddings returns every stored embedding joined with its
	// owning document, ordered by file path then chunk index. This is
	// the linear-scan surface used by the retrieval engine.
	ListEmbeddings(ctx context.Context) ([]StoredEmbedding, error)

	// CountEmbeddings returns the total number of stored embeddings.
	CountEmbeddings(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
