// Package filesystem yields local folder contents as documents.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askme-cli/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// PlaceholderContent marks a file that was recognised but whose content
// could not be extracted. Such files are still indexed so their names
// remain searchable.
const PlaceholderContent = "No content extracted"

// textExtensions are read verbatim as UTF-8 text.
var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".json":     true,
	".html":     true,
	".htm":      true,
}

// opaqueExtensions are recognised document formats whose extraction is
// out of scope. They surface with placeholder content.
var opaqueExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".xlsx": true,
	".xls":  true,
}

// Source is a filesystem-backed document source rooted at whatever
// folder each call names.
type Source struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// New creates a filesystem document source.
func New() *Source {
	return &Source{}
}

// SupportedExtensions returns the lowercased extensions this source
// will yield.
func (s *Source) SupportedExtensions() []string {
	exts := make([]string, 0, len(textExtensions)+len(opaqueExtensions))
	for ext := range textExtensions {
		exts = append(exts, ext)
	}
	for ext := range opaqueExtensions {
		exts = append(exts, ext)
	}
	return exts
}

// Resolve lists every supported file under folder, recursively. Hidden
// files and directories are skipped. A file that cannot be read still
// appears, carrying placeholder content.
func (s *Source) Resolve(ctx context.Context, folder string) ([]domain.FileDocument, error) {
	info, err := os.Stat(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, folder)
		}
		return nil, fmt.Errorf("stat folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", folder)
	}

	var docs []domain.FileDocument
	err = filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if info.IsDir() {
			if isHidden(path) && path != folder {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(path) || !isSupported(path) {
			return nil
		}

		docs = append(docs, s.read(path, info))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// Load reads a single file. Returns domain.ErrNotFound when the file
// does not exist or has an unsupported extension.
func (s *Source) Load(_ context.Context, path string) (*domain.FileDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, fmt.Errorf("stat file: %w", err)
	}
	if info.IsDir() || !isSupported(path) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}

	doc := s.read(path, info)
	return &doc, nil
}

// read builds a FileDocument, degrading to placeholder content when the
// bytes cannot be extracted.
func (s *Source) read(path string, info os.FileInfo) domain.FileDocument {
	doc := domain.FileDocument{
		FileName:      info.Name(),
		FilePath:      path,
		LastModified:  info.ModTime(),
		FileSizeBytes: info.Size(),
		FileType:      strings.ToLower(filepath.Ext(path)),
	}

	if opaqueExtensions[doc.FileType] {
		doc.Content = PlaceholderContent
		return doc
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Could not read %s: %v", path, err)
		doc.Content = PlaceholderContent
		return doc
	}

	doc.Content = string(data)
	if strings.TrimSpace(doc.Content) == "" {
		doc.Content = PlaceholderContent
	}
	return doc
}

// Watch emits change events for folder until ctx is cancelled. New
// subdirectories are watched as they appear.
func (s *Source) Watch(ctx context.Context, folder string) (<-chan domain.FileEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("source is closed")
	}

	info, err := os.Stat(folder)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path error: %s is not a directory", folder)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the folder and every existing subdirectory.
	err = filepath.Walk(folder, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() && !isHidden(path) {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch folder: %w", err)
	}

	s.watcher = watcher
	events := make(chan domain.FileEvent)

	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				fileEvent := s.handleFsEvent(watcher, ev)
				if fileEvent == nil {
					continue
				}
				select {
				case events <- *fileEvent:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watcher error: %v", err)
			}
		}
	}()

	return events, nil
}

// handleFsEvent converts one fsnotify event into a FileEvent, or nil
// when the event is not relevant (directories, hidden files,
// unsupported extensions, chmod).
func (s *Source) handleFsEvent(watcher *fsnotify.Watcher, ev fsnotify.Event) *domain.FileEvent {
	if isHidden(ev.Name) {
		return nil
	}

	switch {
	case ev.Op.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			// Pick up files created in new subdirectories.
			if err := watcher.Add(ev.Name); err != nil {
				logger.Warn("Could not watch %s: %v", ev.Name, err)
			}
			return nil
		}
		if !isSupported(ev.Name) {
			return nil
		}
		return &domain.FileEvent{Type: domain.FileAdded, Path: ev.Name}

	case ev.Op.Has(fsnotify.Write):
		info, err := os.Stat(ev.Name)
		if err != nil || info.IsDir() || !isSupported(ev.Name) {
			return nil
		}
		return &domain.FileEvent{Type: domain.FileChanged, Path: ev.Name}

	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		if !isSupported(ev.Name) {
			return nil
		}
		return &domain.FileEvent{Type: domain.FileDeleted, Path: ev.Name}
	}

	return nil
}

// Close stops any active watcher.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}

// isSupported reports whether the path has a recognised extension.
func isSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return textExtensions[ext] || opaqueExtensions[ext]
}

// isHidden reports whether any path element starts with a dot.
// "." and ".." are not considered hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
