package driven

import (
	"context"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// Connector lists and fetches items from one integration.
// Authentication and token refresh are the connector's responsibility.
type Connector interface {
	// Provider returns the integration kind this connector serves.
	Provider() domain.Provider

	// ListItems returns every item currently visible to the integration.
	// A domain.ErrConnectorAuth failure is fatal for the pass.
	ListItems(ctx context.Context) ([]domain.ItemHandle, error)

	// FetchContent returns the raw payload for one item.
	// Failures wrap domain.ErrConnectorFetch unless they are auth failures.
	FetchContent(ctx context.Context, item domain.ItemHandle) (*domain.RawDocument, error)

	// Close releases resources.
	Close() error
}

// CompletenessReporter is implemented by connectors whose ListItems may
// return a window of the source rather than all of it.
type CompletenessReporter interface {
	// Complete reports whether the last ListItems saw every item.
	Complete() bool
}

// Watcher is implemented by connectors that can report local changes.
type Watcher interface {
	// Watch calls onChange after changes settle, until ctx is done.
	Watch(ctx context.Context, onChange func()) error
}

// TokenSaver persists refreshed OAuth tokens.
type TokenSaver interface {
	SaveToken(ctx context.Context, integrationID string, token domain.OAuthToken) error
}

// ConnectorProvider is the single polymorphic entry point per provider.
type ConnectorProvider interface {
	// Provider returns the provider name.
	Provider() domain.Provider

	// RequiresOAuth reports whether Connect needs an authorization code.
	RequiresOAuth() bool

	// AuthURL returns the consent URL carrying state.
	AuthURL(state string) (string, error)

	// ExchangeCode trades an authorization code for a token and account label.
	ExchangeCode(ctx context.Context, code string) (*domain.OAuthToken, string, error)

	// New builds a connector for an integration.
	New(ctx context.Context, integration domain.Integration, saver TokenSaver) (Connector, error)
}

// ConnectorFactory resolves providers and builds connectors for stored integrations.
type ConnectorFactory interface {
	// Provider returns the registered provider, or domain.ErrUnsupportedProvider.
	Provider(p domain.Provider) (ConnectorProvider, error)

	// Create builds a connector for an integration.
	Create(ctx context.Context, integration domain.Integration) (Connector, error)
}
