// Package cli implements the ptsearch command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ptsearch/internal/adapters/driven/cache/file"
	"github.com/custodia-labs/ptsearch/internal/adapters/driven/embedding/openai"
	storagefile "github.com/custodia-labs/ptsearch/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/ptsearch/internal/adapters/driven/telemetry"
	"github.com/custodia-labs/ptsearch/internal/adapters/driven/vectorindex/sqlite"
	"github.com/custodia-labs/ptsearch/internal/config"
	"github.com/custodia-labs/ptsearch/internal/core/services"
	"github.com/custodia-labs/ptsearch/internal/logger"
)

var version = "0.1.0"

var (
	flagConfig  string
	flagDataDir string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "ptsearch",
	Short: "Semantic search over PyTorch documentation",
	Long: `ptsearch serves semantic search over a pre-chunked PyTorch
documentation corpus through the Model Context Protocol (MCP).

The data directory must contain chunks.json (the corpus), the
embedding cache and the vector index; the latter two are produced by
"ptsearch ingest".`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to TOML config file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ./data)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable verbose logging")
}

// Execute runs the root command. SIGINT/SIGTERM cancel the command
// context so transports shut down gracefully.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig builds the runtime configuration from defaults, the
// optional config file, environment and flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagDebug {
		cfg.Debug = true
	}
	if ingestBatchSize > 0 {
		cfg.BatchSize = ingestBatchSize
	}
	logger.SetVerbose(cfg.Debug)
	return cfg, nil
}

// runtime bundles the wired components for one command invocation.
type runtime struct {
	cfg      *config.Config
	chunks   *storagefile.ChunkStore
	cache    *file.Cache
	index    *sqlite.Index
	embedder *services.CachedEmbedder
	search   *services.SearchService
	ingest   *services.IngestService
}

// buildRuntime validates configuration and wires all components.
// requireIndex selects the startup contract: serving requires every
// persisted artifact, ingestion creates the cache and index itself.
func buildRuntime(requireIndex bool) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.ValidateData(requireIndex); err != nil {
		return nil, err
	}

	chunks, err := storagefile.Load(cfg.ChunksPath())
	if err != nil {
		return nil, err
	}

	cache, err := file.Open(cfg.CachePath())
	if err != nil {
		return nil, err
	}

	raw, err := openai.New(openai.Config{
		APIKey:     cfg.OpenAIAPIKey,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	embedder := services.NewCachedEmbedder(raw, cache, cfg.BatchSize)

	index, err := sqlite.Open(cfg.IndexPath(), raw.Dimensions())
	if err != nil {
		return nil, err
	}

	search := services.NewSearchService(chunks, index, embedder, telemetry.NewLogSink())
	search.SetTimeout(cfg.RequestTimeout)

	return &runtime{
		cfg:      cfg,
		chunks:   chunks,
		cache:    cache,
		index:    index,
		embedder: embedder,
		search:   search,
		ingest:   services.NewIngestService(chunks, index, embedder),
	}, nil
}

// Close releases runtime resources, flushing the embedding cache.
func (r *runtime) Close() error {
	var firstErr error
	if err := r.cache.Close(); err != nil {
		firstErr = fmt.Errorf("closing cache: %w", err)
	}
	if err := r.index.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing index: %w", err)
	}
	return firstErr
}
