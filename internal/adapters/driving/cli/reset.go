package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/inkling/internal/adapters/driven/config/file"
)

var resetYes bool

// isTerminal reports whether r is an interactive terminal.
var isTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the index database",
	Long: `Deletes the index database, including connected accounts and their
tokens. Asks for confirmation unless --yes is given, and refuses to run
without a terminal when --yes is missing.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipServices: "true"},
	RunE:        runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	path, err := file.DatabasePath(cfg)
	if err != nil {
		return err
	}

	if !resetYes {
		ok, err := confirm(cmd, fmt.Sprintf("Delete %s? [y/N] ", path))
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if closeServices != nil {
		if err := closeServices(); err != nil {
			return fmt.Errorf("closing index: %w", err)
		}
		SetServices(nil)
	}

	removed := false
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		err := os.Remove(p)
		switch {
		case err == nil:
			removed = true
		case errors.Is(err, fs.ErrNotExist):
		default:
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}

	if !removed {
		cmd.Println("Nothing to reset.")
		return nil
	}
	cmd.Printf("Deleted %s.\n", path)
	return nil
}

func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !isTerminal(cmd.InOrStdin()) {
		return false, errors.New("refusing to reset without a terminal; pass --yes to confirm")
	}
	cmd.Print(question)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
