package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/inkling/internal/core/domain"
)

var (
	searchLimit    int
	searchJSON     bool
	searchMinScore float64
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search indexed documents",
	Long: `Runs a hybrid search across everything indexed.
Keyword (BM25) and semantic (vector) candidates are fused with Reciprocal
Rank Fusion and the best chunk of each document is shown.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().Float64Var(&searchMinScore, "min-score", 0, "drop results with a fused score below this (default: search.min_score)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := strings.Join(args, " ")
	opts := domain.SearchOptions{
		Limit:    searchLimit,
		MinScore: searchMinScore,
	}

	results, err := searchService.Search(cmd.Context(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.QueryResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.QueryResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, r.DocumentName, r.Score)
		if !r.Timestamp.IsZero() {
			cmd.Printf("      %s\n", r.Timestamp.Local().Format("2006-01-02 15:04"))
		}
		if r.OriginURL != "" {
			cmd.Printf("      %s\n", r.OriginURL)
		}
		if snippet := strings.Join(strings.Fields(r.ChunkText), " "); snippet != "" {
			cmd.Printf("      %s\n", list.Truncate(snippet, 200))
		}
		cmd.Println()
	}
}
