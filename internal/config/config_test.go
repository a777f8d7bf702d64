package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultModel, cfg.EmbeddingModel)
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	assert.Equal(t, TransportStdio, cfg.Transport)
}

func TestLoad_TOMLFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
transport = "sse"
host = "0.0.0.0"
port = 9000
data_dir = "/var/lib/ptsearch"
embedding_model = "text-embedding-3-small"
batch_size = 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, TransportSSE, cfg.Transport)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/var/lib/ptsearch", cfg.DataDir)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 10, cfg.BatchSize)
	// Unset values keep their defaults.
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestLoad_CorruptConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("transport = ["), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_APIKeyNotInFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`transport = "stdio"`), 0o600))

	cfg, err := Load(path)

	require.NoError(t, err)
	// The key only ever comes from the environment.
	assert.Equal(t, "sk-env", cfg.OpenAIAPIKey)
}

func TestConfig_Paths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data"

	assert.Equal(t, filepath.Join("/data", "chunks.json"), cfg.ChunksPath())
	assert.Equal(t, filepath.Join("/data", "embeddings.json"), cfg.CachePath())
	assert.Equal(t, filepath.Join("/data", "index.db"), cfg.IndexPath())
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.OpenAIAPIKey = "sk-test"
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("unknown transport", func(t *testing.T) {
		cfg := valid()
		cfg.Transport = "websocket"
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := valid()
		cfg.OpenAIAPIKey = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OPENAI_API_KEY")
	})

	t.Run("bad batch size", func(t *testing.T) {
		cfg := valid()
		cfg.BatchSize = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad timeout", func(t *testing.T) {
		cfg := valid()
		cfg.RequestTimeout = -time.Second
		assert.Error(t, cfg.Validate())
	})
}

func TestConfig_ValidateData(t *testing.T) {
	newDataDir := func(t *testing.T, files ...string) *Config {
		t.Helper()
		cfg := Default()
		cfg.DataDir = t.TempDir()
		for _, name := range files {
			require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, name), []byte("{}"), 0o600))
		}
		return cfg
	}

	t.Run("missing data dir", func(t *testing.T) {
		cfg := Default()
		cfg.DataDir = filepath.Join(t.TempDir(), "absent")
		assert.ErrorIs(t, cfg.ValidateData(false), domain.ErrDataMissing)
	})

	t.Run("missing chunks", func(t *testing.T) {
		cfg := newDataDir(t)
		assert.ErrorIs(t, cfg.ValidateData(false), domain.ErrDataMissing)
	})

	t.Run("chunks only is enough for ingest", func(t *testing.T) {
		cfg := newDataDir(t, ChunksFileName)
		assert.NoError(t, cfg.ValidateData(false))
	})

	t.Run("serving requires index and cache", func(t *testing.T) {
		cfg := newDataDir(t, ChunksFileName)
		assert.ErrorIs(t, cfg.ValidateData(true), domain.ErrDataMissing)

		cfg = newDataDir(t, ChunksFileName, IndexFileName)
		assert.ErrorIs(t, cfg.ValidateData(true), domain.ErrDataMissing)

		cfg = newDataDir(t, ChunksFileName, IndexFileName, CacheFileName)
		assert.NoError(t, cfg.ValidateData(true))
	})
}
