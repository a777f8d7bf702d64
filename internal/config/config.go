// Package config provides the explicit runtime configuration for
// ptsearch. A single Config is constructed at startup and passed by
// reference to every component that needs it; there is no ambient or
// global lookup.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
)

// Transport names accepted by the serve command.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Default values.
const (
	DefaultHost           = "127.0.0.1"
	DefaultPort           = 8000
	DefaultDataDir        = "./data"
	DefaultModel          = "text-embedding-3-large"
	DefaultBatchSize      = 20
	DefaultRequestTimeout = 30 * time.Second
)

// Artifact file names inside the data directory.
const (
	ChunksFileName = "chunks.json"
	CacheFileName  = "embeddings.json"
	IndexFileName  = "index.db"
)

// Config holds all runtime configuration.
type Config struct {
	// Transport selects the serve binding: stdio or sse.
	Transport string `toml:"transport"`

	// Host is the listen address for the SSE transport.
	Host string `toml:"host"`

	// Port is the listen port for the SSE transport.
	Port int `toml:"port"`

	// DataDir contains chunks.json, the embedding cache and the
	// vector index database.
	DataDir string `toml:"data_dir"`

	// Debug enables verbose logging.
	Debug bool `toml:"debug"`

	// OpenAIAPIKey is the embedding service credential.
	// Loaded from the environment, never from the config file.
	OpenAIAPIKey string `toml:"-"`

	// EmbeddingModel is the OpenAI embedding model name.
	EmbeddingModel string `toml:"embedding_model"`

	// Dimensions overrides the model's embedding dimensionality.
	Dimensions int `toml:"dimensions"`

	// BatchSize is the embedding API batch size for ingestion.
	BatchSize int `toml:"batch_size"`

	// RequestTimeout bounds a single search end-to-end.
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Transport:      TransportStdio,
		Host:           DefaultHost,
		Port:           DefaultPort,
		DataDir:        DefaultDataDir,
		EmbeddingModel: DefaultModel,
		BatchSize:      DefaultBatchSize,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// Load builds a Config from defaults, an optional TOML file and the
// environment. A .env file in the working directory is honoured when
// present. Flag values are applied by the CLI after Load.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	// Best-effort .env; absence is normal.
	_ = godotenv.Load()

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	return cfg, nil
}

// ChunksPath returns the chunk corpus file path.
func (c *Config) ChunksPath() string {
	return filepath.Join(c.DataDir, ChunksFileName)
}

// CachePath returns the embedding cache file path.
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, CacheFileName)
}

// IndexPath returns the vector index database path.
func (c *Config) IndexPath() string {
	return filepath.Join(c.DataDir, IndexFileName)
}

// Validate checks settings that every command depends on.
// A missing API key is fatal before any transport begins listening.
func (c *Config) Validate() error {
	if c.Transport != TransportStdio && c.Transport != TransportSSE {
		return fmt.Errorf("unknown transport %q (want %s or %s)",
			c.Transport, TransportStdio, TransportSSE)
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set; export it or add it to .env")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	return nil
}

// ValidateData checks that the persisted artifacts exist.
// Serving requires all of them; ingestion only needs the chunk file
// (cache and index are created on first run).
func (c *Config) ValidateData(requireIndex bool) error {
	if _, err := os.Stat(c.DataDir); os.IsNotExist(err) {
		return fmt.Errorf("%w: data directory %s", domain.ErrDataMissing, c.DataDir)
	}
	if _, err := os.Stat(c.ChunksPath()); os.IsNotExist(err) {
		return fmt.Errorf("%w: chunk file %s", domain.ErrDataMissing, c.ChunksPath())
	}
	if requireIndex {
		if _, err := os.Stat(c.IndexPath()); os.IsNotExist(err) {
			return fmt.Errorf("%w: vector index %s (run `ptsearch ingest` first)",
				domain.ErrDataMissing, c.IndexPath())
		}
		if _, err := os.Stat(c.CachePath()); os.IsNotExist(err) {
			return fmt.Errorf("%w: embedding cache %s (run `ptsearch ingest` first)",
				domain.ErrDataMissing, c.CachePath())
		}
	}
	return nil
}
