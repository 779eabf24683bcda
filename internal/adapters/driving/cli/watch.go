package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/inkling/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-index local folders as files change",
	Long: `Watches every connected local folder and runs an indexing pass shortly
after files are created, changed or removed. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if integrationService == nil {
		return errors.New("integration service not configured")
	}
	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	err := integrationService.Watch(cmd.Context(), owner)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch: %w", err)
	}
	return nil
}
