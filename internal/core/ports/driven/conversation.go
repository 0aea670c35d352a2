package driven

import "context"

// ConversationStore records per-conversation message history and
// renders it as a context block for prompt assembly.
type ConversationStore interface {
	// AddMessage appends a message to a conversation, creating the
	// conversation on first use. Role is "user" or "assistant".
	AddMessage(ctx context.Context, conversationID, role, content string) error

	// Context renders the last maxTurns user/assistant exchanges as a
	// text block, or "" when the conversation is empty or unknown.
	Context(ctx context.Context, conversationID string, maxTurns int) (string, error)

	// Clear removes a conversation's history.
	Clear(ctx context.Context, conversationID string) error
}
