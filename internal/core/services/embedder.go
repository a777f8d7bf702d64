package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/custodia-labs/ptsearch/internal/core/ports/driven"
	"github.com/custodia-labs/ptsearch/internal/logger"
)

// Ensure CachedEmbedder implements the interface.
var _ driven.Embedder = (*CachedEmbedder)(nil)

// DefaultBatchSize is the maximum number of texts sent to the
// embedding API in one request.
const DefaultBatchSize = 20

// CachedEmbedder wraps a raw Embedder with an EmbeddingCache.
// Cache keys are derived from the model name and the text, so
// switching models invalidates cached vectors transparently.
//
// Flushing is left to the caller: the ingest pipeline flushes once
// after all chunks, not per batch.
type CachedEmbedder struct {
	embedder  driven.Embedder
	cache     driven.EmbeddingCache
	batchSize int
}

// NewCachedEmbedder creates a caching embedder.
// batchSize <= 0 selects DefaultBatchSize.
func NewCachedEmbedder(embedder driven.Embedder, cache driven.EmbeddingCache, batchSize int) *CachedEmbedder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &CachedEmbedder{
		embedder:  embedder,
		cache:     cache,
		batchSize: batchSize,
	}
}

// ContentHash returns the cache key for a text under a model.
func ContentHash(model, text string) string {
	sum := sha256.Sum256([]byte(model + ":" + text))
	return hex.EncodeToString(sum[:])
}

// Embed generates an embedding for a single text, cache-first.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts, preserving input
// order. Cached texts never reach the API; misses are fetched in
// batches of at most batchSize and written back to the cache. On any
// API failure the whole call fails - no partial results.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	model := e.embedder.ModelName()
	vectors := make([][]float32, len(texts))

	// Cache pass
	var missTexts []string
	var missIndices []int
	hits := 0
	for i, text := range texts {
		if cached, ok := e.cache.Get(ContentHash(model, text)); ok {
			vectors[i] = cached
			hits++
			continue
		}
		missTexts = append(missTexts, text)
		missIndices = append(missIndices, i)
	}

	logger.Debug("Embedding batch: %d texts, %d cached, %d misses", len(texts), hits, len(missTexts))

	// Fetch misses in API-sized batches
	for start := 0; start < len(missTexts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(missTexts) {
			end = len(missTexts)
		}

		batch := missTexts[start:end]
		fetched, err := e.embedder.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("embed batch [%d:%d]: %w", start, end, err)
		}
		if len(fetched) != len(batch) {
			return nil, fmt.Errorf("embed batch [%d:%d]: got %d vectors for %d texts",
				start, end, len(fetched), len(batch))
		}

		for j, vector := range fetched {
			idx := missIndices[start+j]
			vectors[idx] = vector
			e.cache.Put(ContentHash(model, texts[idx]), vector)
		}
	}

	return vectors, nil
}

// Dimensions returns the embedding vector size.
func (e *CachedEmbedder) Dimensions() int {
	return e.embedder.Dimensions()
}

// ModelName returns the name of the underlying embedding model.
func (e *CachedEmbedder) ModelName() string {
	return e.embedder.ModelName()
}

// Flush persists the cache to durable storage.
func (e *CachedEmbedder) Flush() error {
	return e.cache.Flush()
}

// Close closes the underlying embedder. The cache is owned by the
// caller and closed separately.
func (e *CachedEmbedder) Close() error {
	return e.embedder.Close()
}
