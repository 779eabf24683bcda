package drive

import (
	"context"
	"fmt"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/custodia-labs/inkling/internal/connectors/google"
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.ConnectorProvider = (*Provider)(nil)

// Provider connects Google Drive accounts through Google OAuth.
type Provider struct {
	oauth   *google.OAuth
	options []option.ClientOption
}

// NewProvider creates the Drive provider.
func NewProvider(app domain.OAuthAppConfig, opts ...option.ClientOption) *Provider {
	return &Provider{
		oauth:   google.NewOAuth(app, drivev3.DriveReadonlyScope),
		options: opts,
	}
}

func (p *Provider) Provider() domain.Provider { return domain.ProviderDrive }

func (p *Provider) RequiresOAuth() bool { return true }

func (p *Provider) AuthURL(state string) (string, error) {
	return p.oauth.AuthURL(state)
}

func (p *Provider) ExchangeCode(ctx context.Context, code string) (*domain.OAuthToken, string, error) {
	return p.oauth.Exchange(ctx, code)
}

func (p *Provider) New(ctx context.Context, integration domain.Integration, saver driven.TokenSaver) (driven.Connector, error) {
	ts, err := p.oauth.TokenSource(ctx, integration, saver)
	if err != nil {
		return nil, err
	}
	svc, err := google.NewDriveService(ctx, ts, p.options...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return NewConnector(svc, ParseConfig(integration.Config), nil), nil
}
