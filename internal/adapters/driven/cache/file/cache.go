// Package file provides a file-backed embedding cache.
// Entries live in memory and are persisted as a single JSON file with
// write-to-temp-then-rename semantics, so a crash mid-flush never
// corrupts the on-disk cache.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/ptsearch/internal/core/ports/driven"
	"github.com/custodia-labs/ptsearch/internal/logger"
)

// Ensure Cache implements the interface.
var _ driven.EmbeddingCache = (*Cache)(nil)

// cacheFile is the on-disk representation.
type cacheFile struct {
	Version int                  `json:"version"`
	Entries map[string][]float32 `json:"entries"`
}

const cacheVersion = 1

// Cache is an in-memory embedding cache persisted to a JSON file.
// Reads and writes are concurrent-safe; flushes are serialised so
// only one is in flight at a time, and lookups block only for the
// snapshot, not for the disk write.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]float32

	flushMu sync.Mutex
	path    string
}

// Open loads a cache from path. A missing file yields an empty cache;
// a corrupt file is an error so a damaged cache is rebuilt explicitly
// rather than silently ignored.
func Open(path string) (*Cache, error) {
	c := &Cache{
		entries: make(map[string][]float32),
		path:    path,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Debug("Embedding cache %s absent, starting empty", path)
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading embedding cache: %w", err)
	}

	var stored cacheFile
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parsing embedding cache %s: %w", path, err)
	}
	if stored.Entries != nil {
		c.entries = stored.Entries
	}

	logger.Debug("Embedding cache loaded: %d entries", len(c.entries))
	return c, nil
}

// Get returns the cached vector for a content hash, if present.
func (c *Cache) Get(contentHash string) ([]float32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vector, ok := c.entries[contentHash]
	return vector, ok
}

// Put stores a vector under a content hash. A racing Put for the same
// key may be overwritten; values are deterministic for a given text
// and model, so last-write-wins is safe.
func (c *Cache) Put(contentHash string, vector []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[contentHash] = vector
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush writes all entries to a temporary file in the cache directory
// and renames it over the cache path.
func (c *Cache) Flush() error {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.mu.RLock()
	snapshot := cacheFile{
		Version: cacheVersion,
		Entries: make(map[string][]float32, len(c.entries)),
	}
	for hash, vector := range c.entries {
		snapshot.Entries[hash] = vector
	}
	c.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding embedding cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing cache file: %w", err)
	}

	logger.Debug("Embedding cache flushed: %d entries to %s", len(snapshot.Entries), c.path)
	return nil
}

// Close flushes the cache.
func (c *Cache) Close() error {
	return c.Flush()
}
