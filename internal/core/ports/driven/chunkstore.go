package driven

import "github.com/custodia-labs/ptsearch/internal/core/domain"

// ChunkStore provides read access to the static documentation corpus.
// It is loaded once at startup and never mutated during serving, so
// implementations need no internal locking for reads.
type ChunkStore interface {
	// Get returns the chunk with the given ID.
	// Returns domain.ErrNotFound when the ID is unknown.
	Get(id string) (*domain.Chunk, error)

	// All returns every chunk in ingestion order.
	All() []domain.Chunk

	// Len returns the number of chunks in the corpus.
	Len() int
}
