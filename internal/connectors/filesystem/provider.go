package filesystem

import (
	"context"
	"fmt"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// ConfigRoot is the integration config key holding the root directory.
const ConfigRoot = "root"

// Verify interface compliance.
var _ driven.ConnectorProvider = (*Provider)(nil)

// Provider builds filesystem connectors. It needs no OAuth.
type Provider struct {
	opts []Option
}

// NewProvider creates the filesystem provider. Options apply to every
// connector it builds.
func NewProvider(opts ...Option) *Provider {
	return &Provider{opts: opts}
}

func (p *Provider) Provider() domain.Provider { return domain.ProviderFilesystem }

func (p *Provider) RequiresOAuth() bool { return false }

// AuthURL is not supported; local roots are added directly.
func (p *Provider) AuthURL(string) (string, error) {
	return "", fmt.Errorf("%w: filesystem does not use OAuth", domain.ErrInvalidInput)
}

// ExchangeCode is not supported; local roots are added directly.
func (p *Provider) ExchangeCode(context.Context, string) (*domain.OAuthToken, string, error) {
	return nil, "", fmt.Errorf("%w: filesystem does not use OAuth", domain.ErrInvalidInput)
}

// New builds a connector for the integration's configured root.
func (p *Provider) New(_ context.Context, integration domain.Integration, _ driven.TokenSaver) (driven.Connector, error) {
	root := integration.Config[ConfigRoot]
	if root == "" {
		return nil, fmt.Errorf("%w: filesystem integration %s has no root", domain.ErrInvalidInput, integration.ID)
	}
	return New(root, p.opts...), nil
}
