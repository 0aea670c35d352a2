package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for askme resources.
const uriScheme = "askme://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all indexed documents in the knowledge base",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)
}

// handleDocumentsResource returns the indexed document listing.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Knowledge.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		FileName     string    `json:"file_name"`
		FilePath     string    `json:"file_path"`
		FileType     string    `json:"file_type"`
		SizeBytes    int64     `json:"size_bytes"`
		ChunkCount   int       `json:"chunk_count"`
		LastModified time.Time `json:"last_modified"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			FileName:     docs[i].FileName,
			FilePath:     docs[i].FilePath,
			FileType:     docs[i].FileType,
			SizeBytes:    docs[i].FileSizeBytes,
			ChunkCount:   docs[i].ChunkCount,
			LastModified: docs[i].LastModified,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
