package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/inkling/internal/adapters/driving/oauth"
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal interface.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Select
  o        - Open the selected result
  n        - New search
  r        - Re-index (sources view)
  Esc      - Back
  Ctrl+C   - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

// runProgram runs the app; replaced in tests.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	app, err := tui.NewApp(&tui.Ports{
		Search:       searchService,
		Integrations: integrationService,
		Owner:        owner,
		Open:         oauth.OpenBrowser,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
