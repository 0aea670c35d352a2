package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
)

// Ensure ConversationStore implements the interface.
var _ driven.ConversationStore = (*ConversationStore)(nil)

// message is one recorded conversation turn half.
type message struct {
	role      string
	content   string
	timestamp time.Time
}

// ConversationStore keeps per-conversation message history in memory.
// History lives for the process lifetime; a new session starts clean.
type ConversationStore struct {
	mu            sync.RWMutex
	conversations map[string][]message
}

// NewConversationStore creates an empty in-memory conversation store.
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[string][]message),
	}
}

// AddMessage appends a message to a conversation, creating the
// conversation on first use.
func (s *ConversationStore) AddMessage(_ context.Context, conversationID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conversationID] = append(s.conversations[conversationID], message{
		role:      role,
		content:   content,
		timestamp: time.Now(),
	})
	return nil
}

// Context renders the last maxTurns exchanges as "User:"/"Assistant:"
// lines, oldest first. Returns "" for an empty or unknown conversation.
func (s *ConversationStore) Context(_ context.Context, conversationID string, maxTurns int) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.conversations[conversationID]
	if len(messages) == 0 || maxTurns <= 0 {
		return "", nil
	}

	// A turn is one user message plus one assistant reply.
	keep := maxTurns * 2
	if len(messages) > keep {
		messages = messages[len(messages)-keep:]
	}

	var b strings.Builder
	for _, m := range messages {
		switch m.role {
		case "user":
			b.WriteString("User: " + m.content + "\n")
		case "assistant":
			b.WriteString("Assistant: " + m.content + "\n")
		}
	}
	return b.String(), nil
}

// Clear removes a conversation's history.
func (s *ConversationStore) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, conversationID)
	return nil
}
