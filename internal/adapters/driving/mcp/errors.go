// Package mcp provides the MCP (Model Context Protocol) server adapter
// for ptsearch. It exposes the documentation search tool to AI
// assistants over stdio or HTTP/SSE.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")
