// Package cli is the inkling command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/inkling/internal/adapters/driven/config/env"
	"github.com/custodia-labs/inkling/internal/adapters/driven/config/file"
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
	"github.com/custodia-labs/inkling/internal/logger"
)

// skipServices marks commands that run without opening the index.
const skipServices = "inkling/skip-services"

// Services bundles what the commands call into.
type Services struct {
	Search       driving.SearchService
	Integrations driving.IntegrationService
	Inspect      driving.InspectService

	// Close releases the store. May be nil.
	Close func() error
}

// BootstrapFunc builds the services for a resolved configuration.
type BootstrapFunc func(ctx context.Context, cfg domain.Config) (*Services, error)

var (
	verbose   bool
	configDir string
	dataDir   string
	owner     string
)

var (
	bootstrap          BootstrapFunc
	searchService      driving.SearchService
	integrationService driving.IntegrationService
	inspectService     driving.InspectService
	closeServices      func() error

	// appConfig is the resolved configuration of the current run.
	appConfig = domain.DefaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "inkling",
	Short: "Search your files, mail, docs and chat from one place",
	Long: `inkling indexes local folders, Gmail, Google Drive and Slack into a
single local database and answers free-text queries with a hybrid of
keyword (BM25) and semantic (vector) retrieval.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline and search diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding config.toml (default: per-OS app dir)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the index (overrides storage.data_dir)")
	rootCmd.PersistentFlags().StringVar(&owner, "owner", "local", "owner the integrations belong to")
}

// SetBootstrap installs the function that builds services on first use.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs ready-made services, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		searchService, integrationService, inspectService, closeServices = nil, nil, nil, nil
		return
	}
	searchService = s.Search
	integrationService = s.Integrations
	inspectService = s.Inspect
	closeServices = s.Close
}

// Execute runs the root command, then waits for background indexing and
// releases the store.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if integrationService != nil {
		integrationService.Wait()
	}
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil && err == nil {
			err = fmt.Errorf("closing index: %w", cerr)
		}
	}
	return err
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if !needsServices(cmd) || searchService != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	appConfig = cfg
	svc, err := bootstrap(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	SetServices(svc)
	return nil
}

func needsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipServices]; ok {
			return false
		}
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

// loadConfig resolves the configuration: defaults, then config.toml, then
// the environment (and .env), then flags.
func loadConfig() (domain.Config, *file.ConfigStore, error) {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return domain.Config{}, nil, err
	}
	cfg, err := store.Load()
	if err != nil {
		return domain.Config{}, nil, err
	}
	if err := env.Overlay(&cfg); err != nil {
		return domain.Config{}, nil, err
	}
	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, nil, err
	}
	return cfg, store, nil
}

func parseProviderArg(args []string) (*domain.Provider, error) {
	if len(args) == 0 {
		return nil, nil
	}
	p, err := domain.ParseProvider(args[0])
	if err != nil {
		return nil, err
	}
	return &p, nil
}
