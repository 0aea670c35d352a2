package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/askme-cli/internal/chunker"
	"github.com/custodia-labs/askme-cli/internal/core/domain"
)

// answerFixture wires an Answer service over mocks with one indexed
// document whose content matches the question exactly.
type answerFixture struct {
	answer   *Answer
	store    *mockDocumentStore
	embedder *mockEmbedder
	llm      *mockLLM
	convs    *mockConversations
}

func newAnswerFixture(t *testing.T, indexed bool) *answerFixture {
	t.Helper()

	content := "Items may be returned within 30 days."
	embedder := newMockEmbedder()
	embedder.vectors[content] = []float32{1, 0, 0}
	embedder.vectors["What is the return window?"] = []float32{1, 0, 0}

	store := newMockDocumentStore()
	source := &mockSource{}
	if indexed {
		source.files = []domain.FileDocument{
			fileDoc("/docs/returns.md", "Returns Policy", content, time.Now()),
		}
	}

	knowledge := NewKnowledge(store, source, embedder, chunker.New(), newMockCache())
	if indexed {
		_, err := knowledge.ProcessFolder(context.Background(), "/docs")
		require.NoError(t, err)
	}

	llm := &mockLLM{
		generateText: "You can return items within 30 days.",
		suggestText:  `["What about refunds?", "Are there exceptions?", "How do I ship a return?"]`,
	}
	convs := &mockConversations{}

	retriever := NewRetrieval(store, embedder, NewExpander())
	assembler := NewAssembler(domain.DefaultContextConfiguration())

	return &answerFixture{
		answer:   NewAnswer(knowledge, retriever, assembler, llm, convs),
		store:    store,
		embedder: embedder,
		llm:      llm,
		convs:    convs,
	}
}

func TestAnswer_Ask_Sufficient(t *testing.T) {
	f := newAnswerFixture(t, true)

	answer, err := f.answer.Ask(context.Background(), "What is the return window?", "")
	require.NoError(t, err)

	assert.Equal(t, "You can return items within 30 days.", answer.Text)
	assert.Equal(t, "assistant", answer.Source)
	assert.Equal(t, 1, f.llm.generateCalls)
	assert.Contains(t, answer.SourceDocuments, "Returns Policy")
	require.NotEmpty(t, answer.Snippets)
	assert.Contains(t, answer.Snippets[0].Text, "30 days")

	// The assembled context reached the model with the chunk in it.
	assert.Contains(t, f.llm.lastContext, "Items may be returned within 30 days.")
}

func TestAnswer_Ask_FollowUps(t *testing.T) {
	f := newAnswerFixture(t, true)

	answer, err := f.answer.Ask(context.Background(), "What is the return window?", "")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"What about refunds?",
		"Are there exceptions?",
		"How do I ship a return?",
	}, answer.Suggestions)
}

func TestAnswer_Ask_InsufficientBypassesModel(t *testing.T) {
	f := newAnswerFixture(t, true)

	// Nothing in the store matches this question's vector.
	f.embedder.vectors["completely unrelated topic"] = []float32{0, 1, 0}

	answer, err := f.answer.Ask(context.Background(), "completely unrelated topic", "")
	require.NoError(t, err)

	assert.Equal(t, "system", answer.Source)
	assert.Zero(t, f.llm.generateCalls, "insufficient context must bypass the model")
	assert.Contains(t, answer.Text, "Do you mean one of these related topics")
}

func TestAnswer_Ask_NoDocumentsLoaded(t *testing.T) {
	f := newAnswerFixture(t, false)

	answer, err := f.answer.Ask(context.Background(), "anything at all", "")
	require.NoError(t, err)

	assert.Equal(t, "system", answer.Source)
	assert.Contains(t, answer.Text, "No documents have been loaded")
	assert.Zero(t, f.llm.generateCalls)
}

func TestAnswer_Ask_ModelFailure(t *testing.T) {
	f := newAnswerFixture(t, true)
	f.llm.generateErr = errors.New("throttled")
	f.llm.suggestErr = errors.New("throttled")

	answer, err := f.answer.Ask(context.Background(), "What is the return window?", "")
	require.NoError(t, err, "model failure becomes a textual answer, not an error")

	assert.Equal(t, "system", answer.Source)
	assert.Equal(t, unavailableAnswer, answer.Text)
	assert.Len(t, answer.Suggestions, 3, "canned follow-ups fill in")
}

func TestAnswer_Ask_RecordsConversation(t *testing.T) {
	f := newAnswerFixture(t, true)

	_, err := f.answer.Ask(context.Background(), "What is the return window?", "conv-1")
	require.NoError(t, err)

	assert.Equal(t, 1, f.convs.countWithPrefix("conv-1|user|"))
	assert.Equal(t, 1, f.convs.countWithPrefix("conv-1|assistant|"))
}

func TestAnswer_Ask_EmptyQuestion(t *testing.T) {
	f := newAnswerFixture(t, true)

	_, err := f.answer.Ask(context.Background(), "   ", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswer_LoadFolder(t *testing.T) {
	f := newAnswerFixture(t, true)

	result, err := f.answer.LoadFolder(context.Background(), "/docs")
	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesIndexed)
}

func TestParseFollowUps(t *testing.T) {
	t.Run("json array", func(t *testing.T) {
		got := parseFollowUps(`["One question?", "Two question?"]`)
		assert.Equal(t, []string{"One question?", "Two question?"}, got)
	})

	t.Run("bulleted text", func(t *testing.T) {
		got := parseFollowUps("Here are some ideas:\n- What about shipping costs?\n- How long does delivery take?\nnot a question")
		assert.Equal(t, []string{"What about shipping costs?", "How long does delivery take?"}, got)
	})

	t.Run("garbage", func(t *testing.T) {
		assert.Empty(t, parseFollowUps("no questions here"))
	})
}
