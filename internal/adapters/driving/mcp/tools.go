package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
	"github.com/custodia-labs/ptsearch/internal/logger"
)

// Tool identity. The schema version is advertised through the tool
// description metadata; the name must match exactly on call_tool.
const (
	ToolName        = "search_pytorch_docs"
	ToolDescription = "Search PyTorch documentation or examples. Call when the user asks " +
		"about a PyTorch API, error message, best-practice or needs a code snippet."
)

// SearchInput is the input schema for the search tool.
// NumResults is a pointer so an absent field (default applies) is
// distinguishable from an explicit zero (rejected).
type SearchInput struct {
	Query      string `json:"query" jsonschema:"the natural-language search query"`
	NumResults *int   `json:"num_results,omitempty" jsonschema:"maximum number of results to return (default 5 when omitted, min 1, max 50)"`
	Filter     string `json:"filter,omitempty" jsonschema:"restrict results to one chunk type: code, text, or empty for no filter"`
}

// SearchOutput is the output schema for the search tool.
// Exactly one of Content or Error is populated.
type SearchOutput struct {
	Content []SearchResultOutput `json:"content,omitempty"`
	Count   int                  `json:"count"`
	Error   *ToolError           `json:"error,omitempty"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID string  `json:"chunk_id"`
	Score   float64 `json:"score"`
	Title   string  `json:"title"`
	Source  string  `json:"source"`
	Type    string  `json:"type"`
	Snippet string  `json:"snippet"`
	Reason  string  `json:"match_reason,omitempty"`
}

// ToolError is the structured error payload for failed calls.
type ToolError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolName,
		Description: ToolDescription,
	}, s.handleSearch)
}

// handleSearch handles the search tool invocation. Domain failures
// are returned as structured tool errors, never as protocol faults,
// so a bad query leaves the session usable.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	query := domain.SearchQuery{
		Text:   input.Query,
		Filter: domain.ChunkFilter(input.Filter),
	}
	if input.NumResults != nil {
		// An explicit zero on the wire is a caller mistake, not a
		// request for the default.
		if *input.NumResults == 0 {
			return toolErrorResult(fmt.Errorf("%w: num_results 0 outside [%d, %d]",
				domain.ErrInvalidQuery, domain.MinNumResults, domain.MaxNumResults))
		}
		query.NumResults = *input.NumResults
	}

	logger.Info("tool call %s query=%q num_results=%d filter=%q",
		ToolName, input.Query, query.NumResults, input.Filter)

	results, err := s.ports.Search.Search(ctx, query)
	if err != nil {
		logger.Warn("tool call %s failed: %v", ToolName, err)
		return toolErrorResult(err)
	}

	output := SearchOutput{
		Content: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Content[i] = SearchResultOutput{
			ChunkID: results[i].ChunkID,
			Score:   results[i].Score,
			Title:   results[i].Title,
			Source:  results[i].Source,
			Type:    string(results[i].Type),
			Snippet: results[i].Snippet,
			Reason:  results[i].MatchReason,
		}
	}

	logger.Info("tool call %s ok: %d results", ToolName, output.Count)

	return nil, output, nil
}

// toolErrorResult maps a domain error to a structured tool error.
// The result carries IsError so the client treats the call as failed,
// while the structured payload preserves the error kind.
func toolErrorResult(err error) (*mcp.CallToolResult, SearchOutput, error) {
	output := SearchOutput{
		Error: &ToolError{
			Kind:    domain.ErrorKind(err),
			Message: err.Error(),
		},
	}

	text, marshalErr := json.Marshal(output.Error)
	if marshalErr != nil {
		text = []byte(err.Error())
	}

	result := &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(text)},
		},
	}
	return result, output, nil
}
