package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
	"github.com/custodia-labs/ptsearch/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockChunkStore implements driven.ChunkStore for testing.
type mockChunkStore struct {
	chunks []domain.Chunk
}

func (m *mockChunkStore) Get(id string) (*domain.Chunk, error) {
	for i := range m.chunks {
		if m.chunks[i].ID == id {
			c := m.chunks[i]
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockChunkStore) All() []domain.Chunk {
	return m.chunks
}

func (m *mockChunkStore) Len() int {
	return len(m.chunks)
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	upsertErr error
	delay     func(ctx context.Context) error

	upserted   []driven.IndexEntry
	lastK      int
	lastFilter domain.ChunkFilter
}

func (m *mockVectorIndex) Upsert(_ context.Context, entries []driven.IndexEntry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, entries...)
	return nil
}

func (m *mockVectorIndex) Search(ctx context.Context, _ []float32, k int, filter domain.ChunkFilter) ([]driven.VectorHit, error) {
	if m.delay != nil {
		if err := m.delay(ctx); err != nil {
			return nil, err
		}
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.lastK = k
	m.lastFilter = filter
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Count(_ context.Context) (int, error) {
	return len(m.upserted), nil
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// mockEmbedder implements driven.Embedder for testing.
type mockEmbedder struct {
	vector   []float32
	embedErr error
	dims     int
	model    string

	batches [][]string
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	m.batches = append(m.batches, texts)
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.vector
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims > 0 {
		return m.dims
	}
	return 4
}

func (m *mockEmbedder) ModelName() string {
	if m.model != "" {
		return m.model
	}
	return "mock-embed"
}

func (m *mockEmbedder) Close() error {
	return nil
}

// mockCache implements driven.EmbeddingCache for testing.
type mockCache struct {
	mu       sync.Mutex
	entries  map[string][]float32
	flushes  int
	flushErr error
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string][]float32)}
}

func (m *mockCache) Get(hash string) ([]float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[hash]
	return v, ok
}

func (m *mockCache) Put(hash string, vector []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[hash] = vector
}

func (m *mockCache) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return m.flushErr
}

func (m *mockCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *mockCache) Close() error {
	return m.Flush()
}

// mockQueryLog implements driven.QueryLog for testing.
type mockQueryLog struct {
	records []domain.SearchStats
}

func (m *mockQueryLog) RecordSearch(_ context.Context, stats domain.SearchStats) {
	m.records = append(m.records, stats)
}
