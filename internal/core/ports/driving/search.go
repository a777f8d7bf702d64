package driving

import (
	"context"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
)

// SearchService is the public search operation exposed to transports.
type SearchService interface {
	// Search validates the query, embeds it, runs the vector search
	// and returns ranked results. An empty result slice with a nil
	// error means "no matches", never "something broke".
	Search(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)
}
