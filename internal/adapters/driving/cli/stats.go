package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var chunksLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how much is indexed",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var chunksCmd = &cobra.Command{
	Use:   "chunks",
	Short: "Preview stored chunks",
	Args:  cobra.NoArgs,
	RunE:  runChunks,
}

func init() {
	chunksCmd.Flags().IntVar(&chunksLimit, "limit", 10, "number of chunks to show")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(chunksCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if inspectService == nil {
		return errors.New("inspect service not configured")
	}
	stats, err := inspectService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}
	cmd.Printf("Documents:       %d\n", stats.Documents)
	cmd.Printf("Chunks:          %d\n", stats.Chunks)
	cmd.Printf("Sentinel chunks: %d\n", stats.SentinelChunks)
	return nil
}

func runChunks(cmd *cobra.Command, _ []string) error {
	if inspectService == nil {
		return errors.New("inspect service not configured")
	}
	if chunksLimit <= 0 {
		return errors.New("--limit must be positive")
	}
	chunks, err := inspectService.ListChunks(cmd.Context(), chunksLimit)
	if err != nil {
		return fmt.Errorf("listing chunks: %w", err)
	}
	if len(chunks) == 0 {
		cmd.Println("The index is empty.")
		return nil
	}
	for _, c := range chunks {
		cmd.Printf("#%d %s\n    %s\n\n", c.ID, c.DocumentName, c.Text)
	}
	return nil
}
