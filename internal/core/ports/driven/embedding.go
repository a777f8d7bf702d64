package driven

import "context"

// Embedder generates vector embeddings from text.
//
// Implementations wrap an external embedding API and are expected to
// classify failures: transient errors are retried internally, and only
// exhausted or permanent failures surface to the caller, wrapped in
// domain.ErrEmbeddingUnavailable. A batch call either returns one
// vector per input text, in input order, or an error - never a partial
// mix.
type Embedder interface {
	// Embed generates a vector embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// The result preserves input order, one vector per input text.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 1536, 3072).
	// This is fixed per model and must match the vector index.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	// It participates in cache keys so a model change invalidates
	// cached vectors transparently.
	ModelName() string

	// Close releases resources.
	Close() error
}

// EmbeddingCache maps a content hash to a previously computed vector.
//
// The cache is unbounded (the corpus is static and small) but the
// contract allows a future LRU bound without interface changes.
// Implementations must be safe for concurrent use; a racing Put for
// the same key may lose to another since values are deterministic
// given the same text and model.
type EmbeddingCache interface {
	// Get returns the cached vector for a content hash, if present.
	Get(contentHash string) ([]float32, bool)

	// Put stores a vector under a content hash.
	Put(contentHash string, vector []float32)

	// Flush persists all entries to durable storage atomically.
	// A crash mid-flush never corrupts the on-disk cache.
	Flush() error

	// Len returns the number of cached entries.
	Len() int

	// Close flushes and releases resources.
	Close() error
}
