package domain

// DefaultSystemPrompt is the fixed instruction block that opens every
// assembled context.
const DefaultSystemPrompt = "You are a helpful assistant that answers questions " +
	"using only the document excerpts provided below. Be concise and accurate. " +
	"Cite the source document when it helps the user."

// ContextConfiguration holds the token/size budget knobs for context
// assembly. A process-wide default applies unless overridden per call.
type ContextConfiguration struct {
	// MaxContextTokens bounds the assembled context size.
	MaxContextTokens int

	// MaxChunksToInclude bounds how many ranked chunks are rendered.
	MaxChunksToInclude int

	// MinSimilarityThreshold is the sufficiency threshold for a single
	// strong match.
	MinSimilarityThreshold float32

	// IncludeConversationHistory controls the history block.
	IncludeConversationHistory bool

	// MaxConversationTurns bounds how many prior turns are included.
	MaxConversationTurns int

	// EnableFallbackSuggestions controls the "available topics" block.
	EnableFallbackSuggestions bool

	// SystemPrompt opens the assembled context.
	SystemPrompt string
}

// DefaultContextConfiguration returns the process-wide defaults.
func DefaultContextConfiguration() ContextConfiguration {
	return ContextConfiguration{
		MaxContextTokens:           4000,
		MaxChunksToInclude:         8,
		MinSimilarityThreshold:     0.3,
		IncludeConversationHistory: true,
		MaxConversationTurns:       3,
		EnableFallbackSuggestions:  true,
		SystemPrompt:               DefaultSystemPrompt,
	}
}
