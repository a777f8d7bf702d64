// Package sqlite provides a SQLite-backed vector index.
// Vectors are persisted as little-endian float32 BLOBs and mirrored
// in memory for exact cosine search; the corpus is small enough that
// a linear scan outperforms an approximate structure while keeping
// ties stable by insertion order.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"sort"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ptsearch/internal/adapters/driven/vectorindex/sqlite/migrations"
	"github.com/custodia-labs/ptsearch/internal/core/domain"
	"github.com/custodia-labs/ptsearch/internal/core/ports/driven"
	"github.com/custodia-labs/ptsearch/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry is the in-memory mirror of one persisted vector, kept in
// insertion order.
type entry struct {
	chunkID   string
	chunkType domain.ChunkType
	vector    []float32
}

// Index is a SQLite-persisted cosine similarity index.
type Index struct {
	mu      sync.RWMutex
	db      *sql.DB
	path    string
	dims    int
	entries []entry
}

// Open creates or opens the index database at path.
// dims fixes the vector dimensionality; persisted vectors with a
// different dimensionality are rejected as corrupt state.
func Open(path string, dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("sqlite index: dimensions must be positive")
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: opening index database: %v", domain.ErrIndexUnavailable, err)
	}

	idx := &Index{
		db:   db,
		path: path,
		dims: dims,
	}

	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrating index database: %v", domain.ErrIndexUnavailable, err)
	}

	if err := idx.load(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return idx, nil
}

// migrate applies embedded SQL migrations in lexical order.
func (idx *Index) migrate() error {
	names, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		script, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := idx.db.Exec(string(script)); err != nil {
			return fmt.Errorf("applying migration %s: %w", name, err)
		}
	}
	return nil
}

// load mirrors all persisted vectors into memory in insertion order.
func (idx *Index) load(ctx context.Context) error {
	rows, err := idx.db.QueryContext(ctx, `
		SELECT chunk_id, chunk_type, dims, embedding
		FROM vectors ORDER BY id
	`)
	if err != nil {
		return fmt.Errorf("%w: loading vectors: %v", domain.ErrIndexUnavailable, err)
	}
	defer rows.Close()

	var entries []entry
	for rows.Next() {
		var e entry
		var chunkType string
		var dims int
		var blob []byte
		if err := rows.Scan(&e.chunkID, &chunkType, &dims, &blob); err != nil {
			return fmt.Errorf("%w: scanning vector row: %v", domain.ErrIndexUnavailable, err)
		}
		if dims != idx.dims || len(blob) != dims*4 {
			return fmt.Errorf("%w: vector for %s has %d dimensions, index expects %d",
				domain.ErrIndexUnavailable, e.chunkID, dims, idx.dims)
		}
		e.chunkType = domain.ChunkType(chunkType)
		e.vector = bytesToFloat32Slice(blob)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: reading vectors: %v", domain.ErrIndexUnavailable, err)
	}

	idx.mu.Lock()
	idx.entries = entries
	idx.mu.Unlock()

	logger.Debug("Vector index loaded: %d vectors from %s", len(entries), idx.path)
	return nil
}

// Upsert inserts or replaces vectors for the given chunks.
// Vectors are L2-normalised before storage so search reduces to a dot
// product. Replacing an existing chunk keeps its insertion position.
func (idx *Index) Upsert(ctx context.Context, entries []driven.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := idx.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning upsert: %v", domain.ErrIndexUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (chunk_id, chunk_type, source, dims, embedding)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chunk_id) DO UPDATE SET
			chunk_type = excluded.chunk_type,
			source = excluded.source,
			dims = excluded.dims,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing upsert: %v", domain.ErrIndexUnavailable, err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if e.Chunk.ID == "" {
			return fmt.Errorf("upsert: chunk with empty id")
		}
		if len(e.Vector) != idx.dims {
			return fmt.Errorf("upsert %s: vector has %d dimensions, index expects %d",
				e.Chunk.ID, len(e.Vector), idx.dims)
		}

		normalised := l2Normalise(e.Vector)
		_, err := stmt.ExecContext(ctx,
			e.Chunk.ID, string(e.Chunk.Type), e.Chunk.Source,
			idx.dims, float32SliceToBytes(normalised))
		if err != nil {
			return fmt.Errorf("%w: upserting %s: %v", domain.ErrIndexUnavailable, e.Chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing upsert: %v", domain.ErrIndexUnavailable, err)
	}

	return idx.load(ctx)
}

// Search finds the k most similar chunks to the query vector.
// Scores are cosine similarity clamped to [0, 1]; ties keep insertion
// order because the sort is stable over the insertion-ordered mirror.
func (idx *Index) Search(ctx context.Context, query []float32, k int, filter domain.ChunkFilter) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, index expects %d",
			domain.ErrIndexUnavailable, len(query), idx.dims)
	}
	if k <= 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.entries) == 0 {
		return nil, fmt.Errorf("%w: index at %s is empty, run ingest first",
			domain.ErrIndexUnavailable, idx.path)
	}

	q := l2Normalise(query)

	hits := make([]driven.VectorHit, 0, len(idx.entries))
	for _, e := range idx.entries {
		if !filter.Matches(e.chunkType) {
			continue
		}
		score := clampScore(dot(q, e.vector))
		if score <= 0 {
			continue
		}
		hits = append(hits, driven.VectorHit{ChunkID: e.chunkID, Score: score})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of indexed vectors.
func (idx *Index) Count(ctx context.Context) (int, error) {
	var count int
	err := idx.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting vectors: %v", domain.ErrIndexUnavailable, err)
	}
	return count, nil
}

// Close closes the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Path returns the database file path.
func (idx *Index) Path() string {
	return idx.path
}

// ==================== Helper Functions ====================

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// l2Normalise returns a unit-length copy of the vector.
// A zero vector is returned as a copy unchanged.
func l2Normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	out := make([]float32, len(v))
	if sum == 0 {
		copy(out, v)
		return out
	}

	inv := 1.0 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
