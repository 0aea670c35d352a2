package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driving"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	result *driving.IngestResult
	err    error
}

func (m *mockAnswerService) Ask(_ context.Context, _, _ string) (*domain.Answer, error) {
	return m.answer, m.err
}

func (m *mockAnswerService) LoadFolder(_ context.Context, _ string) (*driving.IngestResult, error) {
	return m.result, m.err
}

// mockKnowledgeService is a mock implementation of driving.KnowledgeService.
type mockKnowledgeService struct {
	matches   []domain.SnippetMatch
	documents []domain.DocumentRecord
	result    *driving.IngestResult
	processed bool
	modified  time.Time
	err       error
}

func (m *mockKnowledgeService) ProcessFolder(_ context.Context, _ string) (*driving.IngestResult, error) {
	return m.result, m.err
}

func (m *mockKnowledgeService) ProcessFile(_ context.Context, _ string) error {
	return m.err
}

func (m *mockKnowledgeService) DeleteFile(_ context.Context, _ string) error {
	return m.err
}

func (m *mockKnowledgeService) FindRelevantChunks(
	_ context.Context,
	_ string,
	_ int,
) ([]domain.SnippetMatch, error) {
	return m.matches, m.err
}

func (m *mockKnowledgeService) IsProcessed(_ context.Context, _ string) (bool, error) {
	return m.processed, m.err
}

func (m *mockKnowledgeService) LastProcessed(_ context.Context, _ string) (time.Time, error) {
	return m.modified, m.err
}

func (m *mockKnowledgeService) Documents(_ context.Context) ([]domain.DocumentRecord, error) {
	return m.documents, m.err
}

func (m *mockKnowledgeService) HandleFileEvent(_ context.Context, _ domain.FileEvent) error {
	return m.err
}

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	results     []domain.RetrievalResult
	report      *domain.ValidationReport
	suggestions []domain.FallbackSuggestion
	err         error
}

func (m *mockRetriever) Retrieve(
	_ context.Context,
	_ string,
	_ int,
	_ float32,
) ([]domain.RetrievalResult, error) {
	return m.results, m.err
}

func (m *mockRetriever) ValidateEmbeddings(
	_ context.Context,
	_ []string,
) (*domain.ValidationReport, error) {
	return m.report, m.err
}

func (m *mockRetriever) FallbackSuggestions(
	_ context.Context,
	_ string,
	_ int,
) ([]domain.FallbackSuggestion, error) {
	return m.suggestions, m.err
}
