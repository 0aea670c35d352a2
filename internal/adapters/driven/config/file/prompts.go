package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

// systemPromptFile is the user-editable prompt file name.
const systemPromptFile = "system.txt"

// PromptStore loads the answer system prompt from a user-editable file
// on disk, falling back to the built-in default.
//
// The store uses lazy initialisation - the file is only created when
// first accessed, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cached    string
	initOnce  sync.Once
	initErr   error
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.askme/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first SystemPrompt() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".askme", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
	}, nil
}

// SystemPrompt returns the configured system prompt.
// On first call, initialises the prompt directory with the default
// content so users have a file to edit. Falls back to the built-in
// default when the file is unreadable.
func (s *PromptStore) SystemPrompt() string {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return domain.DefaultSystemPrompt
	}

	s.mu.RLock()
	if s.cached != "" {
		defer s.mu.RUnlock()
		return s.cached
	}
	s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.promptDir, systemPromptFile))
	if err != nil {
		return domain.DefaultSystemPrompt
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return domain.DefaultSystemPrompt
	}

	s.mu.Lock()
	s.cached = prompt
	s.mu.Unlock()
	return prompt
}

// Reload clears the cached prompt, forcing a fresh load from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cached = ""
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory and the default file.
// Called once via sync.Once on first SystemPrompt().
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	path := filepath.Join(s.promptDir, systemPromptFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(domain.DefaultSystemPrompt+"\n"), 0600); err != nil {
			s.initErr = fmt.Errorf("create default prompt: %w", err)
		}
	}
}
