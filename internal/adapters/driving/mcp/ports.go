package mcp

import (
	"github.com/custodia-labs/askme-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Answer answers questions against the knowledge base.
	Answer driving.AnswerService

	// Knowledge provides snippet search and the document listing.
	Knowledge driving.KnowledgeService

	// Retriever is optional; when set, the validate tooling is exposed.
	Retriever driving.Retriever
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Answer == nil {
		return ErrMissingAnswerService
	}
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	return nil
}
