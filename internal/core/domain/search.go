package domain

import (
	"fmt"
	"strings"
	"time"
)

// Bounds for SearchQuery.NumResults. Out-of-range values are rejected
// with ErrInvalidQuery rather than clamped, so caller contracts stay
// explicit.
const (
	DefaultNumResults = 5
	MinNumResults     = 1
	MaxNumResults     = 50
)

// ChunkFilter restricts search results to a single chunk type.
type ChunkFilter string

const (
	// FilterNone applies no type restriction.
	FilterNone ChunkFilter = ""

	// FilterCode restricts results to code chunks.
	FilterCode ChunkFilter = "code"

	// FilterText restricts results to prose chunks.
	FilterText ChunkFilter = "text"
)

// Valid reports whether the filter is one of the known values.
func (f ChunkFilter) Valid() bool {
	switch f {
	case FilterNone, FilterCode, FilterText:
		return true
	}
	return false
}

// Matches reports whether a chunk type passes the filter.
func (f ChunkFilter) Matches(t ChunkType) bool {
	return f == FilterNone || string(f) == string(t)
}

// SearchQuery is a single search request. One per tool call.
type SearchQuery struct {
	// Text is the natural-language query.
	Text string

	// NumResults is the maximum number of results to return.
	// Zero means DefaultNumResults.
	NumResults int

	// Filter optionally restricts results to one chunk type.
	Filter ChunkFilter
}

// Normalized returns a copy with trimmed text and defaulted NumResults.
func (q SearchQuery) Normalized() SearchQuery {
	q.Text = strings.TrimSpace(q.Text)
	if q.NumResults == 0 {
		q.NumResults = DefaultNumResults
	}
	return q
}

// Validate checks the query against its contract. It operates on the
// normalized form, so " query " with NumResults 0 is valid while an
// explicit out-of-bounds NumResults is not.
func (q SearchQuery) Validate() error {
	n := q.Normalized()
	if n.Text == "" {
		return fmt.Errorf("%w: query text is empty", ErrInvalidQuery)
	}
	if n.NumResults < MinNumResults || n.NumResults > MaxNumResults {
		return fmt.Errorf("%w: num_results %d outside [%d, %d]",
			ErrInvalidQuery, n.NumResults, MinNumResults, MaxNumResults)
	}
	if !q.Filter.Valid() {
		return fmt.Errorf("%w: unknown filter %q", ErrInvalidQuery, string(q.Filter))
	}
	return nil
}

// SearchResult is a single ranked hit. Results are ordered by
// descending score within a response.
type SearchResult struct {
	// ChunkID identifies the matched chunk.
	ChunkID string

	// Score is the relevance score in [0, 1], higher is more relevant.
	Score float64

	// Title is the human-readable title.
	Title string

	// Source is the originating documentation file.
	Source string

	// Type is the chunk type of the hit.
	Type ChunkType

	// Snippet is a bounded excerpt of the chunk text.
	Snippet string

	// MatchReason explains ranking boosts applied to this result,
	// e.g. "code query & code content". Empty when no boost applied.
	MatchReason string
}

// SearchStats is the diagnostic record emitted for every search.
type SearchStats struct {
	// QueryID correlates log lines for one request.
	QueryID string

	// Query is the normalized query text.
	Query string

	// Filter is the applied chunk filter.
	Filter ChunkFilter

	// ResultCount is the number of results returned.
	ResultCount int

	// CodeQuery reports whether the query was classified as code-seeking.
	CodeQuery bool

	// EmbedLatency is the time spent generating the query embedding.
	EmbedLatency time.Duration

	// SearchLatency is the time spent in the vector index.
	SearchLatency time.Duration

	// TotalLatency is the end-to-end request time.
	TotalLatency time.Duration
}
