package tui

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	SearchFunc func(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.QueryResult, error)
}

func (m *MockSearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.QueryResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, opts)
	}
	return nil, nil
}

// MockIntegrationService implements the parts of driving.IntegrationService
// the TUI calls. Other methods panic through the nil embedded interface.
type MockIntegrationService struct {
	driving.IntegrationService

	mu           sync.Mutex
	Integrations []domain.Integration
	StatusErr    error
	TriggerErr   error
	Triggered    int
}

func (m *MockIntegrationService) Status(_ context.Context, _ string) ([]domain.Integration, error) {
	return m.Integrations, m.StatusErr
}

func (m *MockIntegrationService) TriggerIndexing(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Triggered++
	return m.TriggerErr
}

func TestPorts_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"nil ports", nil, ErrInvalidPorts},
		{"missing search", &Ports{Integrations: &MockIntegrationService{}}, ErrMissingSearchService},
		{"search only", &Ports{Search: &MockSearchService{}}, nil},
		{"all set", &Ports{
			Search:       &MockSearchService{},
			Integrations: &MockIntegrationService{},
			Owner:        "local",
			Open:         func(string) error { return nil },
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
