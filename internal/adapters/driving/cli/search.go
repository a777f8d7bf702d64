package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ptsearch/internal/core/domain"
)

var (
	searchNum    int
	searchFilter string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the documentation corpus from the command line",
	Long: `Runs a query through the same pipeline the MCP server uses.
Useful for verifying an ingested corpus without an MCP client.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchNum, "num-results", "n", domain.DefaultNumResults, "maximum number of results")
	searchCmd.Flags().StringVar(&searchFilter, "filter", "", "restrict to a chunk type: code or text")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	rt, err := buildRuntime(true)
	if err != nil {
		return err
	}
	defer rt.Close() //nolint:errcheck

	query := domain.SearchQuery{
		Text:       args[0],
		NumResults: searchNum,
		Filter:     domain.ChunkFilter(searchFilter),
	}

	results, err := rt.search.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Search results for: %s\n\n", args[0])
	for i := range results {
		cmd.Printf("--- Result %d (%s) ---\n", i+1, results[i].Type)
		cmd.Printf("Title:   %s\n", results[i].Title)
		cmd.Printf("Source:  %s\n", results[i].Source)
		cmd.Printf("Score:   %.4f\n", results[i].Score)
		cmd.Printf("Snippet: %s\n\n", results[i].Snippet)
	}
	return nil
}
