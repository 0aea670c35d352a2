package driven

import (
	"context"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

// DocumentSource yields the text content of every supported file under
// a folder. Format extraction beyond plain text is the source's
// concern; a file it cannot parse surfaces with placeholder content
// rather than an error, so one bad file never aborts a folder.
type DocumentSource interface {
	// Resolve lists every supported file under folder, recursively.
	// Returns domain.ErrFolderNotFound when folder does not exist.
	Resolve(ctx context.Context, folder string) ([]domain.FileDocument, error)

	// Load reads a single file. Returns domain.ErrNotFound when the
	// file does not exist or has an unsupported extension.
	Load(ctx context.Context, path string) (*domain.FileDocument, error)

	// Watch emits change events for folder until ctx is cancelled.
	Watch(ctx context.Context, folder string) (<-chan domain.FileEvent, error)

	// SupportedExtensions returns the lowercased extensions this
	// source will yield.
	SupportedExtensions() []string
}
