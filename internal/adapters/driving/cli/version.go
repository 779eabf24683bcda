package cli

import (
	"github.com/spf13/cobra"
)

// version is stamped at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{skipServices: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("inkling version %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
