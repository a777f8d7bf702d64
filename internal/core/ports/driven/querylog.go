package driven

import (
	"context"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
)

// QueryLog is the observability sink for search diagnostics.
// Implementations must never fail a search: recording is best-effort
// and errors are swallowed by the adapter, not the caller.
type QueryLog interface {
	// RecordSearch emits a structured timing record for one search.
	RecordSearch(ctx context.Context, stats domain.SearchStats)
}
