package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
)

const testChunks = `[
  {
    "id": "pytorch_doc_0",
    "text": "DataLoader wraps a dataset and provides batching.",
    "metadata": {
      "source": "tutorials/beginner/dataloader_tutorial.py",
      "chunk_type": "text",
      "title": "Data loading",
      "section": "Basics"
    }
  },
  {
    "id": "pytorch_doc_1",
    "text": "loader = DataLoader(ds, batch_size=64)",
    "metadata": {
      "source": "tutorials/beginner/dataloader_tutorial.py",
      "chunk_type": "code",
      "language": "python"
    }
  },
  {
    "id": "pytorch_doc_2",
    "text": "Legacy chunk with unknown type.",
    "metadata": {
      "source": "docs/legacy.md",
      "chunk_type": "markdown"
    }
  }
]`

func writeChunks(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Success(t *testing.T) {
	store, err := Load(writeChunks(t, testChunks))

	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())

	chunk, err := store.Get("pytorch_doc_0")
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkTypeText, chunk.Type)
	assert.Equal(t, "Data loading", chunk.Title)
	assert.Equal(t, "Basics", chunk.Section)

	chunk, err = store.Get("pytorch_doc_1")
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkTypeCode, chunk.Type)
	assert.Equal(t, "python", chunk.Language)
}

func TestLoad_UnknownTypeDefaultsToText(t *testing.T) {
	store, err := Load(writeChunks(t, testChunks))
	require.NoError(t, err)

	chunk, err := store.Get("pytorch_doc_2")
	require.NoError(t, err)
	assert.Equal(t, domain.ChunkTypeText, chunk.Type)
}

func TestLoad_MissingFile(t *testing.T) {
	store, err := Load(filepath.Join(t.TempDir(), "chunks.json"))

	require.ErrorIs(t, err, domain.ErrDataMissing)
	assert.Nil(t, store)
}

func TestLoad_CorruptFile(t *testing.T) {
	store, err := Load(writeChunks(t, "not json"))

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDataMissing)
	assert.Nil(t, store)
}

func TestLoad_EmptyID(t *testing.T) {
	_, err := Load(writeChunks(t, `[{"id": "", "text": "x", "metadata": {}}]`))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty id")
}

func TestChunkStore_GetUnknown(t *testing.T) {
	store, err := Load(writeChunks(t, testChunks))
	require.NoError(t, err)

	chunk, err := store.Get("no-such-chunk")

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, chunk)
}

func TestChunkStore_AllPreservesOrder(t *testing.T) {
	store, err := Load(writeChunks(t, testChunks))
	require.NoError(t, err)

	all := store.All()
	require.Len(t, all, 3)
	assert.Equal(t, "pytorch_doc_0", all[0].ID)
	assert.Equal(t, "pytorch_doc_1", all[1].ID)
	assert.Equal(t, "pytorch_doc_2", all[2].ID)

	// The returned slice is a copy.
	all[0].ID = "mutated"
	fresh, err := store.Get("pytorch_doc_0")
	require.NoError(t, err)
	assert.Equal(t, "pytorch_doc_0", fresh.ID)
}
