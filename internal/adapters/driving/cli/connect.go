package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/inkling/internal/adapters/driving/oauth"
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/logger"
)

// callbackTimeout bounds how long connect waits for the browser redirect.
const callbackTimeout = 5 * time.Minute

var (
	connectCode      string
	connectManual    bool
	connectNoBrowser bool
)

var connectCmd = &cobra.Command{
	Use:   "connect <provider>",
	Short: "Connect a Gmail, Google Drive or Slack account",
	Long: `Authorises inkling to read an account and starts indexing it.

The consent page opens in your browser and the redirect is received on the
provider's redirect_url (a loopback address such as
http://localhost:8085/callback). With --manual, or when the redirect URL is
not a loopback address, the authorization code is pasted instead.

Client credentials come from the [google] and [slack] config sections or
the INKLING_GOOGLE_* and INKLING_SLACK_* environment variables.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(domain.ProviderGmail), string(domain.ProviderDrive), string(domain.ProviderSlack)},
	RunE:      runConnect,
}

var addCmd = &cobra.Command{
	Use:   "add <directory>",
	Short: "Index a local directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var disconnectCmd = &cobra.Command{
	Use:       "disconnect <provider>",
	Short:     "Remove a connected source and everything indexed from it",
	Args:      cobra.ExactArgs(1),
	ValidArgs: providerNames(),
	RunE:      runDisconnect,
}

func init() {
	connectCmd.Flags().StringVar(&connectCode, "code", "", "authorization code obtained out of band")
	connectCmd.Flags().BoolVar(&connectManual, "manual", false, "paste the authorization code instead of running the callback server")
	connectCmd.Flags().BoolVar(&connectNoBrowser, "no-browser", false, "print the consent URL without opening a browser")
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(disconnectCmd)
}

func runConnect(cmd *cobra.Command, args []string) error {
	if integrationService == nil {
		return errors.New("integration service not configured")
	}
	provider, err := domain.ParseProvider(args[0])
	if err != nil {
		return err
	}
	if provider == domain.ProviderFilesystem {
		return errors.New("local folders are added with `inkling add <directory>`")
	}

	code := connectCode
	if code == "" {
		code, err = authorise(cmd, provider)
		if err != nil {
			return err
		}
	}

	integration, err := integrationService.Connect(cmd.Context(), owner, provider, code)
	if err != nil {
		return fmt.Errorf("connecting %s: %w", provider, err)
	}
	cmd.Printf("Connected %s (%s). Indexing...\n", provider, integration.Account)
	return nil
}

// authorise sends the user to the consent page and returns the code.
func authorise(cmd *cobra.Command, provider domain.Provider) (string, error) {
	state := oauth.NewState()
	authURL, err := integrationService.AuthURL(provider, state)
	if err != nil {
		return "", err
	}

	addr, err := oauth.ListenAddr(redirectURL(provider))
	if connectManual || err != nil {
		if err != nil {
			logger.Debug("Callback server unavailable: %v", err)
		}
		cmd.Printf("Open this URL and approve access:\n\n  %s\n\n", authURL)
		return promptCode(cmd)
	}

	server := oauth.NewCallbackServer(addr, state)
	if err := server.Start(); err != nil {
		return "", err
	}
	defer server.Stop()

	cmd.Printf("Waiting for authorization on %s\n\n  %s\n\n", server.RedirectURI(), authURL)
	if !connectNoBrowser {
		if err := oauth.OpenBrowser(authURL); err != nil {
			logger.Warn("Could not open a browser: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), callbackTimeout)
	defer cancel()
	return server.WaitForCode(ctx)
}

func redirectURL(provider domain.Provider) string {
	switch provider {
	case domain.ProviderGmail, domain.ProviderDrive:
		return appConfig.Google.RedirectURL
	case domain.ProviderSlack:
		return appConfig.Slack.RedirectURL
	default:
		return ""
	}
}

// promptCode reads the pasted code, hiding it when stdin is a terminal.
func promptCode(cmd *cobra.Command) (string, error) {
	cmd.Print("Authorization code: ")

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		raw, err := term.ReadPassword(int(f.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("reading code: %w", err)
		}
		return nonEmptyCode(string(raw))
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading code: %w", err)
	}
	return nonEmptyCode(line)
}

func nonEmptyCode(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: no authorization code entered", domain.ErrInvalidInput)
	}
	return s, nil
}

func runAdd(cmd *cobra.Command, args []string) error {
	if integrationService == nil {
		return errors.New("integration service not configured")
	}
	integration, err := integrationService.AddLocal(cmd.Context(), owner, args[0])
	if err != nil {
		return fmt.Errorf("adding %s: %w", args[0], err)
	}
	cmd.Printf("Added %s. Indexing...\n", integration.Account)
	return nil
}

func runDisconnect(cmd *cobra.Command, args []string) error {
	if integrationService == nil {
		return errors.New("integration service not configured")
	}
	provider, err := domain.ParseProvider(args[0])
	if err != nil {
		return err
	}
	if err := integrationService.Disconnect(cmd.Context(), owner, provider); err != nil {
		return err
	}
	cmd.Printf("Disconnected %s.\n", provider)
	return nil
}
