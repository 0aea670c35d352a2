package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestConfigStore_SetAndGet(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	err = store.Set("test_key", "test_value")
	require.NoError(t, err)

	val, ok := store.Get("test_key")
	assert.True(t, ok)
	assert.Equal(t, "test_value", val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("str", "hello"))
	require.NoError(t, store.Set("num", 42))
	require.NoError(t, store.Set("flt", 0.25))
	require.NoError(t, store.Set("flag", true))

	assert.Equal(t, "hello", store.GetString("str"))
	assert.Equal(t, 42, store.GetInt("num"))
	assert.InDelta(t, 0.25, store.GetFloat("flt"), 1e-9)
	assert.True(t, store.GetBool("flag"))

	// Missing keys return zero values
	assert.Empty(t, store.GetString("missing"))
	assert.Zero(t, store.GetInt("missing"))
	assert.Zero(t, store.GetFloat("missing"))
	assert.False(t, store.GetBool("missing"))

	// Wrong-typed keys return zero values
	assert.Empty(t, store.GetString("num"))
	assert.Zero(t, store.GetInt("str"))
}

func TestConfigStore_PersistsAcrossLoads(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.model", "llama3.2"))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "llama3.2", reloaded.GetString("llm.model"))
}

func TestConfigStore_LoadFlattensNestedTables(t *testing.T) {
	tmpDir := t.TempDir()

	config := `[embedding]
provider = "ollama"
model = "nomic-embed-text"

[context]
max_tokens = 2000
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(config), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "ollama", store.GetString("embedding.provider"))
	assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"))
	assert.Equal(t, 2000, store.GetInt("context.max_tokens"))
}

func TestLoadSettings_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	s := LoadSettings(store)

	assert.Equal(t, "hash", s.EmbeddingProvider)
	assert.Equal(t, domain.DefaultContextConfiguration(), s.Context)
	assert.Empty(t, s.DataDir)
}

func TestLoadSettings_Overrides(t *testing.T) {
	tmpDir := t.TempDir()

	config := `[embedding]
provider = "ollama"

[context]
max_tokens = 2000
min_similarity = 0.4
include_history = false
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(config), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	s := LoadSettings(store)

	assert.Equal(t, "ollama", s.EmbeddingProvider)
	assert.Equal(t, 2000, s.Context.MaxContextTokens)
	assert.InDelta(t, 0.4, float64(s.Context.MinSimilarityThreshold), 1e-6)
	assert.False(t, s.Context.IncludeConversationHistory)

	// Unset knobs keep their defaults.
	defaults := domain.DefaultContextConfiguration()
	assert.Equal(t, defaults.MaxChunksToInclude, s.Context.MaxChunksToInclude)
	assert.Equal(t, defaults.MaxConversationTurns, s.Context.MaxConversationTurns)
	assert.True(t, s.Context.EnableFallbackSuggestions)
}
