package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
	"github.com/custodia-labs/inkling/internal/logger"
)

// Ensure IntegrationService implements the interface.
var _ driving.IntegrationService = (*IntegrationService)(nil)

// IntegrationService manages connected sources. Every provider goes
// through the same exchange, store and index path.
type IntegrationService struct {
	integrations driven.IntegrationStore
	factory      driven.ConnectorFactory
	indexer      driving.Indexer

	// base outlives request contexts so background passes are not
	// cancelled when the triggering call returns.
	base context.Context

	wg      sync.WaitGroup
	mu      sync.Mutex
	running map[string]struct{}
}

// NewIntegrationService creates a new integration service. Background
// passes run under base.
func NewIntegrationService(
	base context.Context,
	integrations driven.IntegrationStore,
	factory driven.ConnectorFactory,
	indexer driving.Indexer,
) *IntegrationService {
	return &IntegrationService{
		integrations: integrations,
		factory:      factory,
		indexer:      indexer,
		base:         base,
		running:      make(map[string]struct{}),
	}
}

// AuthURL returns the consent URL for an OAuth provider.
func (s *IntegrationService) AuthURL(provider domain.Provider, state string) (string, error) {
	p, err := s.factory.Provider(provider)
	if err != nil {
		return "", err
	}
	if !p.RequiresOAuth() {
		return "", fmt.Errorf("%w: %s does not use OAuth", domain.ErrInvalidInput, provider)
	}
	return p.AuthURL(state)
}

// Connect exchanges an authorization code, upserts the integration and
// starts indexing in the background.
func (s *IntegrationService) Connect(
	ctx context.Context, owner string, provider domain.Provider, code string,
) (*domain.Integration, error) {
	p, err := s.factory.Provider(provider)
	if err != nil {
		return nil, err
	}
	if !p.RequiresOAuth() {
		return nil, fmt.Errorf("%w: %s does not use OAuth", domain.ErrInvalidInput, provider)
	}

	token, account, err := p.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	integration := &domain.Integration{
		Owner:    owner,
		Provider: provider,
		Account:  account,
		Token:    token,
	}
	if existing, err := s.integrations.GetByOwner(ctx, owner, provider); err == nil {
		integration.Config = existing.Config
	}
	if err := s.integrations.Save(ctx, integration); err != nil {
		return nil, err
	}
	logger.Info("Connected %s for %s (%s)", provider, owner, account)

	s.start(*integration)
	return integration, nil
}

// AddLocal registers a filesystem root and starts indexing it.
func (s *IntegrationService) AddLocal(ctx context.Context, owner, root string) (*domain.Integration, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, abs)
	}

	integration := &domain.Integration{
		Owner:    owner,
		Provider: domain.ProviderFilesystem,
		Account:  abs,
		Config:   map[string]string{"root": abs},
	}
	if err := s.integrations.Save(ctx, integration); err != nil {
		return nil, err
	}

	s.start(*integration)
	return integration, nil
}

// TriggerIndexing starts one background pass per integration of owner.
func (s *IntegrationService) TriggerIndexing(ctx context.Context, owner string) error {
	list, err := s.integrations.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}
	for _, integration := range list {
		s.start(integration)
	}
	return nil
}

// start launches a pass unless one is already running for the integration.
func (s *IntegrationService) start(integration domain.Integration) {
	if !s.claim(integration.ID) {
		logger.Debug("Pass already running for %s", integration.ID)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.release(integration.ID)
		s.indexer.RunPass(s.base, integration)
	}()
}

func (s *IntegrationService) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.running[id]; busy {
		return false
	}
	s.running[id] = struct{}{}
	return true
}

func (s *IntegrationService) release(id string) {
	s.mu.Lock()
	delete(s.running, id)
	s.mu.Unlock()
}

// IndexNow runs passes synchronously, optionally for one provider.
func (s *IntegrationService) IndexNow(
	ctx context.Context, owner string, provider *domain.Provider,
) ([]domain.PassReport, error) {
	list, err := s.integrations.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	var reports []domain.PassReport
	for _, integration := range list {
		if provider != nil && integration.Provider != *provider {
			continue
		}
		if !s.claim(integration.ID) {
			reports = append(reports, domain.PassReport{
				IntegrationID: integration.ID,
				Provider:      integration.Provider,
				Status:        domain.SyncSyncing,
				Err:           fmt.Errorf("%w: pass already running", domain.ErrInvalidTransition),
			})
			continue
		}
		reports = append(reports, s.indexer.RunPass(ctx, integration))
		s.release(integration.ID)
	}

	if provider != nil && len(reports) == 0 {
		return nil, fmt.Errorf("%w: no %s integration", domain.ErrNotFound, *provider)
	}
	return reports, nil
}

// Status lists the owner's integrations.
func (s *IntegrationService) Status(ctx context.Context, owner string) ([]domain.Integration, error) {
	return s.integrations.ListByOwner(ctx, owner)
}

// Disconnect removes an integration and, by cascade, its documents.
func (s *IntegrationService) Disconnect(ctx context.Context, owner string, provider domain.Provider) error {
	integration, err := s.integrations.GetByOwner(ctx, owner, provider)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: no %s integration", domain.ErrNotFound, provider)
		}
		return err
	}
	if err := s.integrations.Delete(ctx, integration.ID); err != nil {
		return err
	}
	logger.Info("Disconnected %s for %s", provider, owner)
	return nil
}

// Watch re-indexes each of owner's integrations whose connector can watch
// for changes. Blocks until ctx is done or a watcher fails.
func (s *IntegrationService) Watch(ctx context.Context, owner string) error {
	list, err := s.integrations.ListByOwner(ctx, owner)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	watching := 0
	for _, integration := range list {
		conn, err := s.factory.Create(gctx, integration)
		if err != nil {
			logger.Warn("Cannot watch %s: %v", integration.Provider, err)
			continue
		}
		w, ok := conn.(driven.Watcher)
		if !ok {
			_ = conn.Close()
			continue
		}

		watching++
		logger.Info("Watching %s (%s)", integration.Provider, integration.Account)
		g.Go(func() error {
			defer conn.Close()
			return w.Watch(gctx, func() {
				if !s.claim(integration.ID) {
					return
				}
				defer s.release(integration.ID)
				report := s.indexer.RunPass(gctx, integration)
				logger.Info("Re-indexed %s: %d indexed, %d pruned", integration.Provider, report.Indexed, report.Pruned)
			})
		})
	}

	if watching == 0 {
		return fmt.Errorf("%w: no watchable integrations", domain.ErrNotFound)
	}
	return g.Wait()
}

// Wait blocks until background passes finish.
func (s *IntegrationService) Wait() {
	s.wg.Wait()
}
