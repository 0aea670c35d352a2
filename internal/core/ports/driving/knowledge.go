package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

// IngestResult summarises a folder ingest.
type IngestResult struct {
	// FilesIndexed is the number of files chunked and embedded.
	FilesIndexed int

	// FilesSkipped is the number of unsupported or unchanged files.
	FilesSkipped int

	// FilesFailed is the number of files recorded with placeholder
	// content because parsing failed.
	FilesFailed int

	// Duration is the wall-clock ingest time.
	Duration time.Duration
}

// KnowledgeService maintains the on-disk index of documents and chunk
// embeddings.
type KnowledgeService interface {
	// ProcessFolder clears the entire index and re-ingests every
	// supported file under path. A full rebuild, not a diff: files not
	// found this pass are dropped. Long-running and cancellable; on
	// cancellation the store is left either fully reprocessed or in
	// its prior consistent state.
	ProcessFolder(ctx context.Context, path string) (*IngestResult, error)

	// ProcessFile re-chunks and re-embeds a single file only if its
	// on-disk modification time is strictly newer than the stored
	// record's; otherwise an idempotent no-op. Concurrent calls for
	// the same path are serialized.
	ProcessFile(ctx context.Context, path string) error

	// DeleteFile removes a file and its embeddings from the index.
	DeleteFile(ctx context.Context, path string) error

	// FindRelevantChunks returns up to maxResults snippet matches for
	// question, ranked by similarity above the 0.1 floor.
	FindRelevantChunks(ctx context.Context, question string, maxResults int) ([]domain.SnippetMatch, error)

	// IsProcessed reports whether path is present in the index.
	IsProcessed(ctx context.Context, path string) (bool, error)

	// LastProcessed returns the recorded modification time for path.
	// Returns domain.ErrNotFound when the path has not been indexed.
	LastProcessed(ctx context.Context, path string) (time.Time, error)

	// Documents lists all indexed document records.
	Documents(ctx context.Context) ([]domain.DocumentRecord, error)

	// HandleFileEvent applies a watcher notification: add/change map
	// to ProcessFile, delete maps to DeleteFile.
	HandleFileEvent(ctx context.Context, event domain.FileEvent) error
}
