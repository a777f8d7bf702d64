package driving

import "context"

// IngestStats summarises one ingest run.
type IngestStats struct {
	// Chunks is the total number of chunks processed.
	Chunks int

	// Embedded is the number of chunks embedded via the API.
	Embedded int

	// Cached is the number of chunks served from the embedding cache.
	Cached int
}

// IngestService runs the one-time batch step that embeds the chunk
// corpus and populates the vector index.
type IngestService interface {
	// Ingest embeds every chunk (cache-first) and upserts the vectors
	// into the index, flushing the cache once at the end.
	Ingest(ctx context.Context) (IngestStats, error)
}
