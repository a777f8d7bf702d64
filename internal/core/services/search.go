package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
	"github.com/custodia-labs/ptsearch/internal/core/ports/driven"
	"github.com/custodia-labs/ptsearch/internal/core/ports/driving"
	"github.com/custodia-labs/ptsearch/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// DefaultRequestTimeout bounds a single search end-to-end, including
// the external embedding call.
const DefaultRequestTimeout = 30 * time.Second

// maxSnippetLen bounds result snippets; truncation is word-boundary aware.
const maxSnippetLen = 280

// Ranking boosts, carried over from the documentation search pipeline:
// results whose type matches the query intent gain 20%, results whose
// title contains a query term gain 10%. Scores stay capped at 1.0.
const (
	typeBoost  = 1.2
	titleBoost = 1.1
)

// SearchService orchestrates query embedding, vector search and
// result assembly.
type SearchService struct {
	chunks   driven.ChunkStore
	index    driven.VectorIndex
	embedder driven.Embedder
	queryLog driven.QueryLog
	timeout  time.Duration
}

// NewSearchService creates a search service.
// queryLog may be nil, in which case no diagnostics are emitted.
func NewSearchService(
	chunks driven.ChunkStore,
	index driven.VectorIndex,
	embedder driven.Embedder,
	queryLog driven.QueryLog,
) *SearchService {
	return &SearchService{
		chunks:   chunks,
		index:    index,
		embedder: embedder,
		queryLog: queryLog,
		timeout:  DefaultRequestTimeout,
	}
}

// SetTimeout overrides the per-request timeout.
func (s *SearchService) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

// Search validates the query, embeds it, searches the vector index
// and assembles ranked results. Failures keep their domain kind:
// embedding failures surface as ErrEmbeddingUnavailable, index
// failures as ErrIndexUnavailable, deadline hits as ErrTimeout.
func (s *SearchService) Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error) {
	start := time.Now()

	if err := query.Validate(); err != nil {
		return nil, err
	}
	query = query.Normalized()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stats := domain.SearchStats{
		QueryID:   uuid.NewString(),
		Query:     query.Text,
		Filter:    query.Filter,
		CodeQuery: isCodeQuery(query.Text),
	}

	logger.Section("Search Execution")
	logger.Debug("Query %s: %q num_results=%d filter=%q",
		stats.QueryID, query.Text, query.NumResults, string(query.Filter))

	// Embed the query
	embedStart := time.Now()
	vector, err := s.embedder.Embed(ctx, query.Text)
	stats.EmbedLatency = time.Since(embedStart)
	if err != nil {
		return nil, s.classify(ctx, err, domain.ErrEmbeddingUnavailable, "embed query")
	}

	// Vector search
	searchStart := time.Now()
	hits, err := s.index.Search(ctx, vector, query.NumResults, query.Filter)
	stats.SearchLatency = time.Since(searchStart)
	if err != nil {
		return nil, s.classify(ctx, err, domain.ErrIndexUnavailable, "vector search")
	}

	results := s.assemble(hits, query, stats.CodeQuery)

	stats.ResultCount = len(results)
	stats.TotalLatency = time.Since(start)
	if s.queryLog != nil {
		s.queryLog.RecordSearch(ctx, stats)
	}

	logger.Info("Search %s: %d results in %s", stats.QueryID, len(results), stats.TotalLatency)

	return results, nil
}

// classify wraps an error in its domain kind, preferring ErrTimeout
// when the request deadline was the cause.
func (s *SearchService) classify(ctx context.Context, err error, kind error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: %v", domain.ErrTimeout, op, err)
	}
	if errors.Is(err, kind) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%w: %s: %v", kind, op, err)
}

// assemble hydrates hits from the chunk store, applies ranking boosts
// and re-sorts by descending score. Hits whose chunk has disappeared
// from the store are skipped rather than failing the request.
func (s *SearchService) assemble(hits []driven.VectorHit, query domain.SearchQuery, codeQuery bool) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(hits))
	queryTerms := rankTerms(query.Text)

	for _, hit := range hits {
		chunk, err := s.chunks.Get(hit.ChunkID)
		if err != nil {
			logger.Warn("Hit %s not in chunk store, skipping", hit.ChunkID)
			continue
		}

		result := domain.SearchResult{
			ChunkID: chunk.ID,
			Score:   hit.Score,
			Title:   chunk.DisplayTitle(),
			Source:  chunk.Source,
			Type:    chunk.Type,
			Snippet: makeSnippet(chunk.Text, maxSnippetLen),
		}

		// Content type boost
		switch {
		case codeQuery && chunk.Type == domain.ChunkTypeCode:
			result.Score = capScore(result.Score * typeBoost)
			result.MatchReason = "code query & code content"
		case !codeQuery && chunk.Type == domain.ChunkTypeText:
			result.Score = capScore(result.Score * typeBoost)
			result.MatchReason = "concept query & text content"
		}

		// Title term boost
		title := strings.ToLower(result.Title)
		for _, term := range queryTerms {
			if strings.Contains(title, term) {
				result.Score = capScore(result.Score * titleBoost)
				break
			}
		}

		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// rankTerms extracts query terms long enough to be meaningful for
// title matching.
func rankTerms(query string) []string {
	var terms []string
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if len(term) > 3 {
			terms = append(terms, term)
		}
	}
	return terms
}

func capScore(score float64) float64 {
	if score > 1.0 {
		return 1.0
	}
	return score
}

// makeSnippet truncates text to at most limit bytes, cutting on a
// word boundary and appending an ellipsis. The cut never splits a
// multi-byte rune.
func makeSnippet(text string, limit int) string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return text
	}

	end := limit
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}

	cut := text[:end]
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " \n\t") + "..."
}

// codeIndicators are keywords suggesting the user wants code.
var codeIndicators = []string{
	"code", "example", "implementation", "function", "class", "method",
	"snippet", "syntax", "parameter", "argument", "return", "import",
	"module", "api", "call", "invoke", "instantiate", "create", "initialize",
}

// codePatterns are syntax fragments suggesting the query itself
// contains code.
var codePatterns = []string{
	"def ", "class ", "import ", "from ", "torch.", "nn.",
	"->", "=>", "==", "!=", "+=", "-=", "*=", "():", "@",
}

// isCodeQuery reports whether a query is looking for code rather than
// conceptual documentation.
func isCodeQuery(query string) bool {
	lower := strings.ToLower(query)
	for _, indicator := range codeIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	for _, pattern := range codePatterns {
		if strings.Contains(query, pattern) {
			return true
		}
	}
	return false
}
