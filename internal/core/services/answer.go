package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/askme-cli/internal/core/domain"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driven"
	"github.com/custodia-labs/askme-cli/internal/core/ports/driving"
	"github.com/custodia-labs/askme-cli/internal/logger"
)

// Ensure Answer implements the interface.
var _ driving.AnswerService = (*Answer)(nil)

// Retrieval parameters for the answer pipeline.
const (
	answerMaxChunks      = 10
	answerSimilarity     = 0.1
	maxFollowUpQuestions = 3
)

// unavailableAnswer is returned when the generative model call fails.
const unavailableAnswer = "I was unable to generate an answer right now. Please try again in a moment."

// Answer is the end-to-end question answering service: retrieval,
// sufficiency judgment, context assembly, generation and follow-up
// suggestions.
type Answer struct {
	knowledge     driving.KnowledgeService
	retriever     driving.Retriever
	assembler     *Assembler
	llm           driven.LLMService
	conversations driven.ConversationStore
}

// NewAnswer creates an answer service. The conversation store is
// optional and may be nil; history is then never recorded or included.
func NewAnswer(
	knowledge driving.KnowledgeService,
	retriever driving.Retriever,
	assembler *Assembler,
	llm driven.LLMService,
	conversations driven.ConversationStore,
) *Answer {
	return &Answer{
		knowledge:     knowledge,
		retriever:     retriever,
		assembler:     assembler,
		llm:           llm,
		conversations: conversations,
	}
}

// Ask answers a question. When retrieval is insufficient the fallback
// text is the final answer and the generative model is never invoked.
func (s *Answer) Ask(ctx context.Context, question, conversationID string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	logger.Section("Question Answering")
	logger.Info("Question: %q", question)

	results, err := s.retriever.Retrieve(ctx, question, answerMaxChunks, answerSimilarity)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	var conversationContext string
	if conversationID != "" && s.conversations != nil {
		conversationContext, err = s.conversations.Context(ctx, conversationID, s.assembler.config.MaxConversationTurns)
		if err != nil {
			logger.Warn("Conversation context unavailable: %v", err)
			conversationContext = ""
		}
	}

	sufficient := s.assembler.HasSufficientContext(results)
	logger.Info("Sufficient context: %t (%d results)", sufficient, len(results))

	var suggestions []domain.FallbackSuggestion
	if !sufficient && s.assembler.config.EnableFallbackSuggestions {
		suggestions, err = s.retriever.FallbackSuggestions(ctx, question, maxFallbackTopics)
		if err != nil {
			logger.Warn("Fallback suggestions unavailable: %v", err)
			suggestions = nil
		}
	}

	contextText := s.assembler.BuildContext(question, results, conversationContext, suggestions)

	answer := &domain.Answer{Question: question}

	if sufficient {
		text, err := s.llm.Generate(ctx, question, contextText)
		if err != nil {
			// Upstream failures become a textual answer, never an
			// unhandled error.
			logger.Error("Answer generation failed: %v", err)
			answer.Text = unavailableAnswer
			answer.Source = "system"
		} else {
			answer.Text = text
			answer.Source = "assistant"
			answer.Snippets = snippetsFromResults(results)
		}
	} else {
		hasDocuments, err := s.hasDocuments(ctx)
		if err != nil {
			return nil, err
		}
		answer.Text = s.assembler.FormatFallbackResponse(question, suggestions, hasDocuments)
		answer.Source = "system"
	}

	answer.SourceDocuments = distinctSources(results)
	answer.Suggestions = s.followUps(ctx, question, answer.Text, answer.Snippets)

	if conversationID != "" && s.conversations != nil {
		if err := s.conversations.AddMessage(ctx, conversationID, "user", question); err != nil {
			logger.Warn("Failed to record question: %v", err)
		}
		if err := s.conversations.AddMessage(ctx, conversationID, "assistant", answer.Text); err != nil {
			logger.Warn("Failed to record answer: %v", err)
		}
	}

	return answer, nil
}

// LoadFolder rebuilds the knowledge index from a folder.
func (s *Answer) LoadFolder(ctx context.Context, folderPath string) (*driving.IngestResult, error) {
	return s.knowledge.ProcessFolder(ctx, folderPath)
}

// hasDocuments reports whether any documents are indexed at all, which
// selects between the two fallback messages.
func (s *Answer) hasDocuments(ctx context.Context) (bool, error) {
	docs, err := s.knowledge.Documents(ctx)
	if err != nil {
		return false, fmt.Errorf("list documents: %w", err)
	}
	return len(docs) > 0, nil
}

// followUps asks the model for follow-up questions. Best effort: any
// failure yields canned suggestions instead of an error.
func (s *Answer) followUps(ctx context.Context, question, answer string, snippets []domain.SnippetMatch) []string {
	prompt := buildFollowUpPrompt(question, answer, snippets)

	raw, err := s.llm.Suggest(ctx, prompt)
	if err != nil {
		logger.Debug("Follow-up generation failed: %v", err)
		return cannedFollowUps(answer)
	}

	parsed := parseFollowUps(raw)
	if len(parsed) == 0 {
		return cannedFollowUps(answer)
	}
	return parsed
}

// buildFollowUpPrompt renders the suggestion prompt from the exchange
// and up to three supporting snippets.
func buildFollowUpPrompt(question, answer string, snippets []domain.SnippetMatch) string {
	var b strings.Builder

	b.WriteString("Based on the following Q&A exchange, generate 3 relevant follow-up questions that a user might ask.\n")
	b.WriteString("The questions should be natural, helpful, and build upon the information provided.\n\n")
	fmt.Fprintf(&b, "Original Question: %s\n\n", question)
	fmt.Fprintf(&b, "AI Answer: %s\n", answer)

	if len(snippets) > 0 {
		b.WriteString("\nRelevant document snippets:\n")
		limit := len(snippets)
		if limit > 3 {
			limit = 3
		}
		for _, snippet := range snippets[:limit] {
			fmt.Fprintf(&b, "- From %s: %s\n", snippet.FileName, excerpt(snippet.Text, 200))
		}
	}

	b.WriteString("\nGenerate exactly 3 follow-up questions that are:\n")
	b.WriteString("1. Natural and conversational\n")
	b.WriteString("2. Build upon the current answer\n")
	b.WriteString("3. Help the user explore related topics\n")
	b.WriteString("4. Are specific and actionable\n\n")
	b.WriteString("Format your response as a JSON array of strings:\n")
	b.WriteString(`["Question 1", "Question 2", "Question 3"]`)

	return b.String()
}

// parseFollowUps extracts questions from the model's raw response,
// preferring the requested JSON array and falling back to scanning for
// question-shaped lines.
func parseFollowUps(raw string) []string {
	raw = strings.TrimSpace(raw)

	var questions []string
	if err := json.Unmarshal([]byte(raw), &questions); err == nil {
		out := make([]string, 0, len(questions))
		for _, q := range questions {
			if q = strings.TrimSpace(q); q != "" {
				out = append(out, q)
			}
			if len(out) == maxFollowUpQuestions {
				break
			}
		}
		return out
	}

	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-•* ")
		if strings.HasSuffix(line, "?") && len(line) > 10 {
			out = append(out, line)
			if len(out) == maxFollowUpQuestions {
				break
			}
		}
	}
	return out
}

// cannedFollowUps returns generic suggestions keyed off the answer
// text when the model produced nothing usable.
func cannedFollowUps(answer string) []string {
	var out []string
	lower := strings.ToLower(answer)

	if strings.Contains(lower, "price") || strings.Contains(lower, "cost") {
		out = append(out, "Are there any discounts or special offers available?")
	}
	if strings.Contains(lower, "feature") || strings.Contains(lower, "include") {
		out = append(out, "What are the main benefits of this?")
	}
	if answer != "" {
		out = append(out, "Can you provide more details about this?")
	}
	for len(out) < maxFollowUpQuestions {
		out = append(out, "What else should I know about this topic?")
	}
	return out[:maxFollowUpQuestions]
}

// snippetsFromResults converts retrieval results to answer snippets.
func snippetsFromResults(results []domain.RetrievalResult) []domain.SnippetMatch {
	snippets := make([]domain.SnippetMatch, 0, len(results))
	for _, result := range results {
		snippets = append(snippets, domain.SnippetMatch{
			FileName:   result.Chunk.SourceDocument,
			FilePath:   result.Chunk.FilePath,
			Text:       result.Chunk.Content,
			ChunkIndex: result.Chunk.Index,
			Score:      result.Score,
		})
	}
	return snippets
}

// distinctSources lists the unique source documents across results,
// preserving rank order.
func distinctSources(results []domain.RetrievalResult) []string {
	seen := make(map[string]struct{})
	var sources []string
	for _, result := range results {
		name := result.Chunk.SourceDocument
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		sources = append(sources, name)
	}
	return sources
}
