package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/inkling/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Show or change settings",
	Annotations: map[string]string{skipServices: "true"},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings (file, environment and flags applied)",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <section.key> <value>",
	Short: "Change a setting in config.toml",
	Long: `Changes one setting in config.toml, for example:

  inkling config set embedding.provider ollama
  inkling config set search.top_k 20
  inkling config set google.client_id 1234.apps.googleusercontent.com`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file and database locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// secretKeys are masked by config show.
var secretKeys = map[string]bool{
	"embedding.api_key":    true,
	"google.client_secret": true,
	"slack.client_secret":  true,
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	flat := file.Flatten(cfg)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		value := fmt.Sprint(flat[k])
		if secretKeys[k] && value != "" {
			value = mask(value)
		}
		cmd.Printf("%-32s %s\n", k, value)
	}
	return nil
}

func mask(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return err
	}
	if err := store.Set(args[0], args[1]); err != nil {
		return err
	}
	cmd.Printf("Set %s in %s\n", args[0], store.Path())
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	cfg, store, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := file.DatabasePath(cfg)
	if err != nil {
		return err
	}
	cmd.Printf("config:   %s\n", store.Path())
	cmd.Printf("database: %s\n", db)
	return nil
}
