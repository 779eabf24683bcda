package connectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ConnectorFactory = (*Registry)(nil)

// Registry maps providers to their ConnectorProvider and builds connectors
// for stored integrations.
type Registry struct {
	mu        sync.RWMutex
	providers map[domain.Provider]driven.ConnectorProvider
	saver     driven.TokenSaver
}

// NewRegistry creates an empty registry. Connectors it creates persist
// refreshed tokens through saver.
func NewRegistry(saver driven.TokenSaver) *Registry {
	return &Registry{
		providers: make(map[domain.Provider]driven.ConnectorProvider),
		saver:     saver,
	}
}

// Register adds a provider, replacing any previous one for the same name.
func (r *Registry) Register(p driven.ConnectorProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Provider()] = p
}

// Provider returns the registered provider or domain.ErrUnsupportedProvider.
func (r *Registry) Provider(p domain.Provider) (driven.ConnectorProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedProvider, p)
	}
	return provider, nil
}

// Providers returns the registered provider names in sorted order.
func (r *Registry) Providers() []domain.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Provider, 0, len(r.providers))
	for p := range r.providers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Create builds a connector for a stored integration.
func (r *Registry) Create(ctx context.Context, integration domain.Integration) (driven.Connector, error) {
	p, err := r.Provider(integration.Provider)
	if err != nil {
		return nil, err
	}
	conn, err := p.New(ctx, integration, r.saver)
	if err != nil {
		return nil, fmt.Errorf("create %s connector: %w", integration.Provider, err)
	}
	return conn, nil
}
