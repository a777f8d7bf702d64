// Package file provides a chunk store backed by the chunks.json
// artifact produced by the offline documentation processing pipeline.
package file

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
	"github.com/custodia-labs/ptsearch/internal/core/ports/driven"
	"github.com/custodia-labs/ptsearch/internal/logger"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// chunkRecord is the chunks.json wire format.
type chunkRecord struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	Metadata struct {
		Source    string `json:"source"`
		ChunkType string `json:"chunk_type"`
		Title     string `json:"title"`
		Section   string `json:"section"`
		Language  string `json:"language"`
	} `json:"metadata"`
}

// ChunkStore holds the static documentation corpus in memory.
// It is populated once at load and read-only afterwards.
type ChunkStore struct {
	chunks []domain.Chunk
	byID   map[string]int
}

// Load reads chunks from a JSON file. A missing file is reported as
// domain.ErrDataMissing so startup can fail fast with a descriptive
// error before any transport binds.
func Load(path string) (*ChunkStore, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: chunk file %s", domain.ErrDataMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading chunk file: %w", err)
	}

	var records []chunkRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing chunk file %s: %w", path, err)
	}

	store := &ChunkStore{
		chunks: make([]domain.Chunk, 0, len(records)),
		byID:   make(map[string]int, len(records)),
	}

	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("parsing chunk file %s: record %d has empty id", path, i)
		}

		chunkType := domain.ChunkType(rec.Metadata.ChunkType)
		if chunkType != domain.ChunkTypeCode {
			chunkType = domain.ChunkTypeText
		}

		store.byID[rec.ID] = len(store.chunks)
		store.chunks = append(store.chunks, domain.Chunk{
			ID:       rec.ID,
			Text:     rec.Text,
			Type:     chunkType,
			Source:   rec.Metadata.Source,
			Title:    rec.Metadata.Title,
			Section:  rec.Metadata.Section,
			Language: rec.Metadata.Language,
		})
	}

	logger.Info("Chunk store loaded: %d chunks from %s", len(store.chunks), path)
	return store, nil
}

// Get returns the chunk with the given ID.
func (s *ChunkStore) Get(id string) (*domain.Chunk, error) {
	idx, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound)
	}
	chunk := s.chunks[idx]
	return &chunk, nil
}

// All returns every chunk in ingestion order.
func (s *ChunkStore) All() []domain.Chunk {
	out := make([]domain.Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Len returns the number of chunks in the corpus.
func (s *ChunkStore) Len() int {
	return len(s.chunks)
}
