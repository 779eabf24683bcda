package gmail

import (
	"context"
	"fmt"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/custodia-labs/inkling/internal/connectors/google"
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ConnectorProvider = (*Provider)(nil)

// Provider connects Gmail accounts through Google OAuth.
type Provider struct {
	oauth   *google.OAuth
	cfg     Config
	options []option.ClientOption
}

// NewProvider creates the Gmail provider. opts are passed to every API
// service it builds.
func NewProvider(app domain.OAuthAppConfig, cfg Config, opts ...option.ClientOption) *Provider {
	return &Provider{
		oauth:   google.NewOAuth(app, gmailapi.GmailReadonlyScope),
		cfg:     cfg,
		options: opts,
	}
}

// OAuth exposes the OAuth client, for tests.
func (p *Provider) OAuth() *google.OAuth { return p.oauth }

func (p *Provider) Provider() domain.Provider { return domain.ProviderGmail }

func (p *Provider) RequiresOAuth() bool { return true }

func (p *Provider) AuthURL(state string) (string, error) {
	return p.oauth.AuthURL(state)
}

func (p *Provider) ExchangeCode(ctx context.Context, code string) (*domain.OAuthToken, string, error) {
	return p.oauth.Exchange(ctx, code)
}

// New builds a connector whose refreshed tokens are saved through saver.
func (p *Provider) New(ctx context.Context, integration domain.Integration, saver driven.TokenSaver) (driven.Connector, error) {
	ts, err := p.oauth.TokenSource(ctx, integration, saver)
	if err != nil {
		return nil, err
	}
	svc, err := google.NewGmailService(ctx, ts, p.options...)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return NewConnector(svc, ParseConfig(p.cfg, integration.Config), nil), nil
}
