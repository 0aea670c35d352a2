package domain

import "time"

// DocumentRecord represents an indexed source file with metadata.
// One record exists per source file; it owns the file's EmbeddingRecords
// and is replaced wholesale when the file is reprocessed.
type DocumentRecord struct {
	// ID is the unique identifier for the document.
	ID string

	// FilePath is the stable identity of the source file.
	FilePath string

	// FileName is the human-readable display name.
	FileName string

	// FileType is the lowercased file extension (e.g. ".md").
	FileType string

	// FileSizeBytes is the size of the source file.
	FileSizeBytes int64

	// LastModified is the source file's modification time at ingest.
	// ProcessFile is a no-op unless the on-disk time is strictly newer.
	LastModified time.Time

	// ChunkCount is the number of embeddings stored for this document.
	ChunkCount int

	// CreatedAt is when the document was first indexed.
	CreatedAt time.Time

	// UpdatedAt is when the document was last reprocessed.
	UpdatedAt time.Time
}

// ChunkType classifies the dominant content of a semantic chunk.
type ChunkType string

const (
	ChunkParagraph ChunkType = "paragraph"
	ChunkHeading   ChunkType = "heading"
	ChunkList      ChunkType = "list"
	ChunkTable     ChunkType = "table"
	ChunkCode      ChunkType = "code"
	ChunkMixed     ChunkType = "mixed"
)

// MaxChunkHeaders is the number of ancestor headings carried on a chunk.
const MaxChunkHeaders = 3

// SemanticChunk is a bounded span of a document's text treated as an
// atomic retrieval unit. Chunks are immutable once created; re-chunking
// the owning document supersedes them.
type SemanticChunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// Content is the chunk text.
	Content string

	// SourceDocument is the display name of the owning file.
	SourceDocument string

	// FilePath is the path of the owning file, kept for citations.
	FilePath string

	// Index is the ordinal position within the source document.
	Index int

	// TokenCount is the estimated token count of Content.
	TokenCount int

	// Type is the dominant content classification.
	Type ChunkType

	// Headers holds up to MaxChunkHeaders most recent ancestor headings,
	// outermost first, for hierarchical context ("Section > Subsection").
	Headers []string

	// Relevance is transient; it is set only on chunks returned from a
	// similarity query and is never persisted.
	Relevance float32
}

// HeaderBreadcrumb renders the chunk's heading stack as a single line,
// or "" when no headings were in scope.
func (c SemanticChunk) HeaderBreadcrumb() string {
	if len(c.Headers) == 0 {
		return ""
	}
	out := c.Headers[0]
	for _, h := range c.Headers[1:] {
		out += " > " + h
	}
	return out
}

// EmbeddingRecord is the persisted vector for one chunk of a document.
// All records in a store share the same dimensionality and model version;
// mixing versions silently breaks similarity comparisons, so callers must
// re-embed the whole index on a model change.
type EmbeddingRecord struct {
	// DocumentID is the owning DocumentRecord.
	DocumentID string

	// ChunkIndex is the chunk's ordinal within the document.
	ChunkIndex int

	// TextChunk is the chunk's text content.
	TextChunk string

	// Vector is the embedding. Invariant: len(Vector) == Dimensions.
	Vector []float32

	// Dimensions is the vector dimensionality.
	Dimensions int

	// ModelVersion tags the embedding model that produced Vector.
	ModelVersion string

	// CreatedAt is when the embedding was generated.
	CreatedAt time.Time
}

// Validate checks the dimensionality invariant.
func (e EmbeddingRecord) Validate() error {
	if len(e.Vector) != e.Dimensions {
		return ErrDimensionMismatch
	}
	return nil
}

// SnippetMatch is a document snippet returned from a direct similarity
// query against the knowledge store.
type SnippetMatch struct {
	// FileName is the owning document's display name.
	FileName string

	// FilePath is the owning document's path.
	FilePath string

	// Text is the matched chunk text.
	Text string

	// ChunkIndex is the chunk ordinal within the document.
	ChunkIndex int

	// Score is the cosine similarity to the question.
	Score float32
}
