package driving

import (
	"context"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

// AnswerService is the end-to-end question answering entry point:
// retrieval, sufficiency judgment, context assembly and generation.
type AnswerService interface {
	// Ask answers a question. conversationID may be empty; when set,
	// conversation history is included in the context and the exchange
	// is recorded. When retrieval is insufficient the fallback text is
	// returned directly without invoking the generative model.
	Ask(ctx context.Context, question, conversationID string) (*domain.Answer, error)

	// LoadFolder rebuilds the knowledge index from a folder.
	LoadFolder(ctx context.Context, folderPath string) (*IngestResult, error)
}
