package slack

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ConnectorProvider = (*Provider)(nil)

const authorizeURL = "https://slack.com/oauth/v2/authorize"

// Scopes are the bot scopes needed to read public channels and name users.
var Scopes = []string{"channels:read", "channels:history", "users:read"}

// Provider connects Slack workspaces through OAuth v2. Slack bot tokens do
// not expire, so stored tokens carry no refresh token.
type Provider struct {
	app        domain.OAuthAppConfig
	httpClient *http.Client
	options    []slackapi.Option
}

// NewProvider creates the Slack provider. options apply to every API
// client it builds.
func NewProvider(app domain.OAuthAppConfig, options ...slackapi.Option) *Provider {
	return &Provider{app: app, httpClient: http.DefaultClient, options: options}
}

// WithHTTPClient sets the client used for the code exchange.
func (p *Provider) WithHTTPClient(c *http.Client) *Provider {
	p.httpClient = c
	return p
}

func (p *Provider) Provider() domain.Provider { return domain.ProviderSlack }

func (p *Provider) RequiresOAuth() bool { return true }

func (p *Provider) configured() error {
	if !p.app.Configured() {
		return fmt.Errorf("%w: set client_id and client_secret in the [slack] config section", domain.ErrInvalidInput)
	}
	return nil
}

// AuthURL returns the workspace install URL.
func (p *Provider) AuthURL(state string) (string, error) {
	if err := p.configured(); err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("client_id", p.app.ClientID)
	q.Set("scope", strings.Join(Scopes, ","))
	q.Set("state", state)
	if p.app.RedirectURL != "" {
		q.Set("redirect_uri", p.app.RedirectURL)
	}
	return authorizeURL + "?" + q.Encode(), nil
}

// ExchangeCode trades a code for a bot token. The account label is the
// workspace name.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*domain.OAuthToken, string, error) {
	if err := p.configured(); err != nil {
		return nil, "", err
	}
	resp, err := slackapi.GetOAuthV2ResponseContext(ctx, p.httpClient, p.app.ClientID, p.app.ClientSecret, code, p.app.RedirectURL)
	if err != nil {
		return nil, "", fmt.Errorf("%w: exchange code: %w", domain.ErrConnectorAuth, err)
	}
	tokenType := resp.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &domain.OAuthToken{AccessToken: resp.AccessToken, TokenType: tokenType}, resp.Team.Name, nil
}

// New builds a connector for a stored integration.
func (p *Provider) New(_ context.Context, integration domain.Integration, _ driven.TokenSaver) (driven.Connector, error) {
	if integration.Token == nil || integration.Token.AccessToken == "" {
		return nil, fmt.Errorf("%w: integration %s has no token, reconnect it", domain.ErrConnectorAuth, integration.ID)
	}
	client := slackapi.New(integration.Token.AccessToken, p.options...)
	return NewConnector(client, nil), nil
}
