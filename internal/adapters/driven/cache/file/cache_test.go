package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_MissingFile(t *testing.T) {
	cache, err := Open(filepath.Join(t.TempDir(), "embeddings.json"))

	require.NoError(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestOpen_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	cache, err := Open(path)

	require.Error(t, err)
	assert.Nil(t, cache)
}

func TestCache_PutGet(t *testing.T) {
	cache, err := Open(filepath.Join(t.TempDir(), "embeddings.json"))
	require.NoError(t, err)

	_, ok := cache.Get("abc")
	assert.False(t, ok)

	cache.Put("abc", []float32{0.1, 0.2, 0.3})

	got, ok := cache.Get("abc")
	require.True(t, ok)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_FlushAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")

	cache, err := Open(path)
	require.NoError(t, err)
	cache.Put("hash-a", []float32{1, 2})
	cache.Put("hash-b", []float32{3})
	require.NoError(t, cache.Flush())

	reloaded, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())

	got, ok := reloaded.Get("hash-a")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, got)

	got, ok = reloaded.Get("hash-b")
	require.True(t, ok)
	assert.Equal(t, []float32{3}, got)
}

func TestCache_FlushCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "embeddings.json")

	cache, err := Open(path)
	require.NoError(t, err)
	cache.Put("x", []float32{1})

	require.NoError(t, cache.Flush())

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestCache_FlushLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	cache, err := Open(filepath.Join(dir, "embeddings.json"))
	require.NoError(t, err)
	cache.Put("x", []float32{1})

	require.NoError(t, cache.Flush())
	require.NoError(t, cache.Flush())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "embeddings.json", entries[0].Name())
}

func TestCache_CloseFlushes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embeddings.json")
	cache, err := Open(path)
	require.NoError(t, err)
	cache.Put("x", []float32{1})

	require.NoError(t, cache.Close())

	reloaded, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

func TestCache_ConcurrentAccess(t *testing.T) {
	cache, err := Open(filepath.Join(t.TempDir(), "embeddings.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n))
			cache.Put(key, []float32{float32(n)})
			cache.Get(key)
			_ = cache.Flush()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, cache.Len())
}
