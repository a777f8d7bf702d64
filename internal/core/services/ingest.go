package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ptsearch/internal/core/ports/driven"
	"github.com/custodia-labs/ptsearch/internal/core/ports/driving"
	"github.com/custodia-labs/ptsearch/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService embeds the chunk corpus and populates the vector
// index. It is the offline batch step; the serving path never writes
// to the index.
type IngestService struct {
	chunks   driven.ChunkStore
	index    driven.VectorIndex
	embedder *CachedEmbedder
}

// NewIngestService creates an ingest service.
func NewIngestService(chunks driven.ChunkStore, index driven.VectorIndex, embedder *CachedEmbedder) *IngestService {
	return &IngestService{
		chunks:   chunks,
		index:    index,
		embedder: embedder,
	}
}

// Ingest embeds every chunk (cache-first), upserts vectors into the
// index and flushes the embedding cache once at the end. Any
// embedding failure aborts the run; the cache keeps whatever was
// fetched before the failure so a retry resumes cheaply.
func (s *IngestService) Ingest(ctx context.Context) (driving.IngestStats, error) {
	chunks := s.chunks.All()
	stats := driving.IngestStats{Chunks: len(chunks)}

	logger.Section("Corpus Ingestion")
	logger.Info("Ingesting %d chunks with model %s", len(chunks), s.embedder.ModelName())

	if len(chunks) == 0 {
		return stats, nil
	}

	cachedBefore := s.embedder.cache.Len()

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		// Keep partial progress on disk before surfacing the failure.
		if flushErr := s.embedder.Flush(); flushErr != nil {
			logger.Warn("Cache flush after failed ingest: %v", flushErr)
		}
		return stats, fmt.Errorf("embed corpus: %w", err)
	}

	entries := make([]driven.IndexEntry, len(chunks))
	for i := range chunks {
		entries[i] = driven.IndexEntry{Chunk: chunks[i], Vector: vectors[i]}
	}

	if err := s.index.Upsert(ctx, entries); err != nil {
		return stats, fmt.Errorf("index corpus: %w", err)
	}

	if err := s.embedder.Flush(); err != nil {
		return stats, fmt.Errorf("flush embedding cache: %w", err)
	}

	stats.Embedded = s.embedder.cache.Len() - cachedBefore
	stats.Cached = stats.Chunks - stats.Embedded
	if stats.Cached < 0 {
		stats.Cached = 0
	}

	logger.Info("Ingest complete: %d embedded, %d from cache", stats.Embedded, stats.Cached)

	return stats, nil
}
