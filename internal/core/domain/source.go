package domain

import "time"

// FileDocument is one file yielded by a document source. Parsing
// failures surface as placeholder Content rather than propagating, so
// consumers must tolerate degenerate (empty) content.
type FileDocument struct {
	// Content is the extracted text, possibly a placeholder.
	Content string

	// FileName is the base name of the file.
	FileName string

	// FilePath is the absolute path of the file.
	FilePath string

	// LastModified is the file's modification time.
	LastModified time.Time

	// FileSizeBytes is the file's size on disk.
	FileSizeBytes int64

	// FileType is the lowercased extension.
	FileType string
}

// FileChangeType is the kind of change reported by a folder watcher.
type FileChangeType int

const (
	// FileAdded indicates a new file appeared.
	FileAdded FileChangeType = iota

	// FileChanged indicates an existing file was modified.
	FileChanged

	// FileDeleted indicates a file was removed.
	FileDeleted
)

// FileEvent is a change notification from a folder watcher. The watcher
// itself stays outside the core; the knowledge service consumes these as
// explicit commands.
type FileEvent struct {
	// Type is the kind of change.
	Type FileChangeType

	// Path is the affected file path.
	Path string
}
