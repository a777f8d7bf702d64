package driven

import (
	"context"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
)

// VectorIndex provides nearest-neighbour search over chunk embeddings.
//
// The index is populated once by the offline ingest step and treated
// as read-only during serving. Engine failures (missing persisted
// state, corrupt index) surface wrapped in domain.ErrIndexUnavailable
// so the search engine can treat them as fatal for the request rather
// than returning empty results.
type VectorIndex interface {
	// Upsert inserts or replaces vectors for the given chunks.
	// Each entry pairs a chunk with its embedding.
	Upsert(ctx context.Context, entries []IndexEntry) error

	// Search finds the k most similar chunks to the query vector,
	// optionally restricted to one chunk type. Results are ordered by
	// descending similarity; ties break by insertion order (stable).
	Search(ctx context.Context, query []float32, k int, filter domain.ChunkFilter) ([]VectorHit, error)

	// Count returns the number of indexed vectors.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// IndexEntry pairs a chunk with its embedding for insertion.
type IndexEntry struct {
	// Chunk is the chunk metadata stored alongside the vector.
	Chunk domain.Chunk

	// Vector is the chunk's embedding.
	Vector []float32
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the similarity score in [0, 1], higher is more relevant.
	Score float64
}
