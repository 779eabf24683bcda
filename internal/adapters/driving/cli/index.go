package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index [provider]",
	Short: "Re-index connected sources now",
	Long: `Runs an indexing pass for every connected source, or only for the named
provider (filesystem, gmail, gdrive, slack), and waits for it to finish.`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: providerNames(),
	RunE:      runIndex,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show connected sources and their sync status",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(statusCmd)
}

func providerNames() []string {
	var names []string
	for _, p := range domain.Providers() {
		names = append(names, string(p))
	}
	return names
}

func runIndex(cmd *cobra.Command, args []string) error {
	if integrationService == nil {
		return errors.New("integration service not configured")
	}
	provider, err := parseProviderArg(args)
	if err != nil {
		return err
	}

	reports, err := integrationService.IndexNow(cmd.Context(), owner, provider)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	failed := 0
	for i := range reports {
		r := &reports[i]
		cmd.Printf("%-11s %-8s listed %d, indexed %d, empty %d, skipped %d, pruned %d\n",
			r.Provider, r.Status, r.Listed, r.Indexed, r.Empty, r.Skipped, r.Pruned)
		if r.Err != nil {
			failed++
			cmd.Printf("            error: %v\n", r.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d passes failed", failed, len(reports))
	}
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if integrationService == nil {
		return errors.New("integration service not configured")
	}
	integrations, err := integrationService.Status(cmd.Context(), owner)
	if err != nil {
		return fmt.Errorf("listing integrations: %w", err)
	}

	if len(integrations) == 0 {
		cmd.Println("No sources connected. Try `inkling connect <provider>` or `inkling add <dir>`.")
		return nil
	}

	for i := range integrations {
		in := &integrations[i]
		synced := "never"
		if !in.LastSyncedAt.IsZero() {
			synced = in.LastSyncedAt.Local().Format("2006-01-02 15:04")
		}
		cmd.Printf("%-11s %-8s %-30s last synced %s\n", in.Provider, in.SyncStatus, in.Account, synced)
		if in.LastError != "" {
			cmd.Printf("            error: %s\n", in.LastError)
		}
	}
	return nil
}
