package file

import (
	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

// Settings is the typed view of the askme configuration used at wiring
// time. Every field has a working default; the config file and
// environment only override.
type Settings struct {
	// DataDir is where the SQLite index lives. Empty means the default
	// under the user's home directory.
	DataDir string

	// EmbeddingProvider selects "hash" or "ollama".
	EmbeddingProvider string

	// OllamaBaseURL is the Ollama API endpoint for both embeddings and
	// generation.
	OllamaBaseURL string

	// EmbeddingModel is the Ollama embedding model name.
	EmbeddingModel string

	// LLMModel is the Ollama generation model name.
	LLMModel string

	// Context holds the assembly budget knobs.
	Context domain.ContextConfiguration
}

// Configuration keys.
const (
	keyDataDir           = "storage.data_dir"
	keyEmbeddingProvider = "embedding.provider"
	keyOllamaBaseURL     = "ollama.base_url"
	keyEmbeddingModel    = "embedding.model"
	keyLLMModel          = "llm.model"
	keyMaxContextTokens  = "context.max_tokens"
	keyMaxChunks         = "context.max_chunks"
	keyMinSimilarity     = "context.min_similarity"
	keyIncludeHistory    = "context.include_history"
	keyMaxTurns          = "context.max_turns"
	keyEnableFallback    = "context.enable_fallback_suggestions"
)

// LoadSettings reads typed settings from the store, applying defaults
// for anything unset.
func LoadSettings(store *ConfigStore) Settings {
	s := Settings{
		EmbeddingProvider: "hash",
		Context:           domain.DefaultContextConfiguration(),
	}

	s.DataDir = store.GetString(keyDataDir)
	if v := store.GetString(keyEmbeddingProvider); v != "" {
		s.EmbeddingProvider = v
	}
	s.OllamaBaseURL = store.GetString(keyOllamaBaseURL)
	s.EmbeddingModel = store.GetString(keyEmbeddingModel)
	s.LLMModel = store.GetString(keyLLMModel)

	if v := store.GetInt(keyMaxContextTokens); v > 0 {
		s.Context.MaxContextTokens = v
	}
	if v := store.GetInt(keyMaxChunks); v > 0 {
		s.Context.MaxChunksToInclude = v
	}
	if v := store.GetFloat(keyMinSimilarity); v > 0 {
		s.Context.MinSimilarityThreshold = float32(v)
	}
	if _, ok := store.Get(keyIncludeHistory); ok {
		s.Context.IncludeConversationHistory = store.GetBool(keyIncludeHistory)
	}
	if v := store.GetInt(keyMaxTurns); v > 0 {
		s.Context.MaxConversationTurns = v
	}
	if _, ok := store.Get(keyEnableFallback); ok {
		s.Context.EnableFallbackSuggestions = store.GetBool(keyEnableFallback)
	}

	return s
}
