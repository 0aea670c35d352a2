package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrFolderNotFound indicates the ingest folder does not exist.
	// Fatal for ProcessFolder and ProcessFile.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDimensionMismatch indicates two vectors cannot be compared or
	// an embedding record violates its dimensionality invariant. Fails
	// the specific comparison, never the whole retrieval batch.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptVector indicates stored vector bytes could not be
	// decoded into the recorded dimensionality.
	ErrCorruptVector = errors.New("corrupt embedding vector")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Indexing and retrieval are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the generative model service is not
	// configured. Answers degrade to retrieval-only fallback text.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrProcessingInProgress indicates a folder ingest is already
	// running.
	ErrProcessingInProgress = errors.New("folder processing in progress")
)
