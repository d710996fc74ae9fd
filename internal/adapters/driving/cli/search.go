package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/draftmill/draftmill-cli/internal/core/domain"
	"github.com/draftmill/draftmill-cli/internal/core/services"
)

var (
	searchMaterials string
	searchTopK      int
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the evidence index for a materials folder",
	Long: `Indexes a materials folder and ranks its chunks against a query,
exactly as report generation would. Useful for checking what evidence a
section will be grounded in before running a full generation.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchMaterials, "materials", "m", "materials", "folder of source material")
	searchCmd.Flags().IntVarP(&searchTopK, "top", "n", 0, "number of results (0 uses the configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if config == nil {
		return fmt.Errorf("search backends not configured")
	}

	ingest := services.NewIngestService(config.Registry, config.Chunker)
	if _, err := ingest.Ingest(cmd.Context(), searchMaterials); err != nil {
		return fmt.Errorf("ingest materials: %w", err)
	}

	retriever := services.NewRetrievalService(ingest.Chunks(), config.Embedder, config.Settings.Retrieval)
	results, err := retriever.Retrieve(cmd.Context(), args[0], searchTopK)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchList(cmd, retriever.Strategy(), results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.ScoredChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchList(cmd *cobra.Command, strategy domain.RetrievalStrategy, results []domain.ScoredChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%s):\n\n", strategy)
	for i, result := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, result.Chunk.Breadcrumb(), result.Score)
		cmd.Printf("      %s\n\n", snippet(result.Chunk.Content, 160))
	}
	return nil
}

// snippet truncates content to at most n runes on one line.
func snippet(content string, n int) string {
	flat := make([]rune, 0, n)
	for _, r := range content {
		if r == '\n' || r == '\t' {
			r = ' '
		}
		flat = append(flat, r)
		if len(flat) == n {
			return string(flat) + "..."
		}
	}
	return string(flat)
}
