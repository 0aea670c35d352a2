package services

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockDocumentStore implements driven.DocumentStore in memory.
type mockDocumentStore struct {
	mu         sync.Mutex
	docs       map[string]*domain.DocumentRecord
	embeddings map[string][]domain.EmbeddingRecord

	replaceErr error
	listErr    error

	replaceCalls int
	clearCalls   int
}

func newMockDocumentStore() *mockDocumentStore {
	return &mockDocumentStore{
		docs:       make(map[string]*domain.DocumentRecord),
		embeddings: make(map[string][]domain.EmbeddingRecord),
	}
}

func (m *mockDocumentStore) ReplaceDocument(_ context.Context, doc *domain.DocumentRecord, embeddings []domain.EmbeddingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.replaceCalls++
	copied := *doc
	m.docs[doc.FilePath] = &copied
	m.embeddings[doc.FilePath] = append([]domain.EmbeddingRecord(nil), embeddings...)
	return nil
}

func (m *mockDocumentStore) GetDocumentByPath(_ context.Context, path string) (*domain.DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockDocumentStore) ListDocuments(_ context.Context) ([]domain.DocumentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.DocumentRecord, 0, len(m.docs))
	for _, doc := range m.docs {
		out = append(out, *doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FileName < out[j].FileName })
	return out, nil
}

func (m *mockDocumentStore) DeleteDocumentByPath(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, path)
	delete(m.embeddings, path)
	return nil
}

func (m *mockDocumentStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	m.docs = make(map[string]*domain.DocumentRecord)
	m.embeddings = make(map[string][]domain.EmbeddingRecord)
	return nil
}

func (m *mockDocumentStore) ListEmbeddings(_ context.Context) ([]driven.StoredEmbedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}

	paths := make([]string, 0, len(m.embeddings))
	for path := range m.embeddings {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var out []driven.StoredEmbedding
	for _, path := range paths {
		doc := m.docs[path]
		for _, emb := range m.embeddings[path] {
			out = append(out, driven.StoredEmbedding{
				EmbeddingRecord: emb,
				FileName:        doc.FileName,
				FilePath:        doc.FilePath,
			})
		}
	}
	return out, nil
}

func (m *mockDocumentStore) CountEmbeddings(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, embs := range m.embeddings {
		count += len(embs)
	}
	return count, nil
}

func (m *mockDocumentStore) Close() error { return nil }

// mockEmbedder implements driven.EmbeddingService with fixed vectors
// keyed by input text, so tests control similarity exactly.
type mockEmbedder struct {
	vectors       map[string][]float32
	defaultVector []float32
	embedErr      error
}

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{
		vectors:       make(map[string][]float32),
		defaultVector: []float32{0, 0, 1},
	}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}
	return m.defaultVector, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Similarity(a, b []float32) (float32, error) {
	return domain.CosineSimilarity(a, b)
}

func (m *mockEmbedder) Dimensions() int       { return 3 }
func (m *mockEmbedder) ModelVersion() string  { return "mock-v1" }
func (m *mockEmbedder) Ping(context.Context) error { return nil }
func (m *mockEmbedder) Close() error          { return nil }

// mockLLM implements driven.LLMService.
type mockLLM struct {
	generateText string
	generateErr  error
	suggestText  string
	suggestErr   error

	generateCalls int
	lastContext   string
}

func (m *mockLLM) Generate(_ context.Context, _, contextText string) (string, error) {
	m.generateCalls++
	m.lastContext = contextText
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return m.generateText, nil
}

func (m *mockLLM) Suggest(_ context.Context, _ string) (string, error) {
	if m.suggestErr != nil {
		return "", m.suggestErr
	}
	return m.suggestText, nil
}

func (m *mockLLM) ModelName() string          { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error               { return nil }

// mockConversations implements driven.ConversationStore.
type mockConversations struct {
	contextText string
	messages    []string
}

func (m *mockConversations) AddMessage(_ context.Context, conversationID, role, content string) error {
	m.messages = append(m.messages, conversationID+"|"+role+"|"+content)
	return nil
}

func (m *mockConversations) Context(_ context.Context, _ string, _ int) (string, error) {
	return m.contextText, nil
}

func (m *mockConversations) Clear(_ context.Context, _ string) error {
	m.messages = nil
	return nil
}

// mockSource implements driven.DocumentSource over a fixed file list.
type mockSource struct {
	files      []domain.FileDocument
	resolveErr error
	loadErr    error
}

func (m *mockSource) Resolve(_ context.Context, _ string) ([]domain.FileDocument, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	return m.files, nil
}

func (m *mockSource) Load(_ context.Context, path string) (*domain.FileDocument, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	for i := range m.files {
		if m.files[i].FilePath == path {
			return &m.files[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockSource) Watch(_ context.Context, _ string) (<-chan domain.FileEvent, error) {
	ch := make(chan domain.FileEvent)
	close(ch)
	return ch, nil
}

func (m *mockSource) SupportedExtensions() []string {
	return []string{".txt", ".md"}
}

// mockCache implements driven.Cache.
type mockCache struct {
	mu      sync.Mutex
	entries map[string]any
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]any)}
}

func (m *mockCache) Put(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

func (m *mockCache) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	return value, ok
}

func (m *mockCache) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *mockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]any)
}

// hasPrefixCount counts messages recorded with the given prefix.
func (m *mockConversations) countWithPrefix(prefix string) int {
	count := 0
	for _, msg := range m.messages {
		if strings.HasPrefix(msg, prefix) {
			count++
		}
	}
	return count
}
