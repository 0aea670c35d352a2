package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question       string `json:"question" jsonschema:"the question to answer from the knowledge base"`
	ConversationID string `json:"conversation_id,omitempty" jsonschema:"optional conversation identifier for multi-turn context"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer          string   `json:"answer"`
	Source          string   `json:"source"`
	SourceDocuments []string `json:"source_documents,omitempty"`
	Suggestions     []string `json:"suggestions,omitempty"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find document snippets"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of snippets to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single snippet match.
type SearchResultOutput struct {
	FileName   string  `json:"file_name"`
	FilePath   string  `json:"file_path"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
	Content    string  `json:"content"`
}

// defaultSearchLimit bounds the search tool when the caller omits one.
const defaultSearchLimit = 5

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the loaded knowledge base",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the knowledge base for relevant document snippets",
	}, s.handleSearch)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Answer.Ask(ctx, input.Question, input.ConversationID)
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:          answer.Text,
		Source:          answer.Source,
		SourceDocuments: answer.SourceDocuments,
		Suggestions:     answer.Suggestions,
	}, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	matches, err := s.ports.Knowledge.FindRelevantChunks(ctx, input.Query, limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(matches)),
		Count:   len(matches),
	}

	for i := range matches {
		output.Results[i] = SearchResultOutput{
			FileName:   matches[i].FileName,
			FilePath:   matches[i].FilePath,
			ChunkIndex: matches[i].ChunkIndex,
			Score:      float64(matches[i].Score),
			Content:    matches[i].Text,
		}
	}

	return nil, output, nil
}
