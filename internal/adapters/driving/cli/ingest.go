package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestBatchSize int

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed the chunk corpus and build the vector index",
	Long: `Runs the one-time batch step: embeds every chunk in chunks.json
(consulting the embedding cache first), writes the vectors into the
index database and flushes the cache to disk.

Re-running is cheap: chunks already in the cache are not re-embedded.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "embedding API batch size (default from config)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	rt, err := buildRuntime(false)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	stats, err := rt.ingest.Ingest(cmd.Context())
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d chunks (%d embedded, %d from cache)\n",
		stats.Chunks, stats.Embedded, stats.Cached)
	cmd.Printf("Vector index: %s\n", rt.cfg.IndexPath())
	return nil
}
