package mcp

import (
	"context"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results []domain.QueryResult
	err     error
	opts    domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.QueryResult, error) {
	m.opts = opts
	return m.results, m.err
}

// mockIntegrationService implements the status side of driving.IntegrationService.
type mockIntegrationService struct {
	driving.IntegrationService
	list  []domain.Integration
	err   error
	owner string
}

func (m *mockIntegrationService) Status(_ context.Context, owner string) ([]domain.Integration, error) {
	m.owner = owner
	return m.list, m.err
}

type mockInspectService struct {
	stats domain.StoreStats
	err   error
}

func (m *mockInspectService) Stats(context.Context) (domain.StoreStats, error) {
	return m.stats, m.err
}

func (m *mockInspectService) ListChunks(context.Context, int) ([]domain.ChunkPreview, error) {
	return nil, m.err
}
