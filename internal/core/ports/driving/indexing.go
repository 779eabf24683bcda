package driving

import (
	"context"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// Indexer runs indexing passes. Callers must not run two passes for the
// same integration concurrently.
type Indexer interface {
	// RunPass indexes one integration and reports the outcome. The sync
	// status record is the source of truth for the pass result.
	RunPass(ctx context.Context, integration domain.Integration) domain.PassReport
}

// IntegrationService manages connected sources and triggers indexing.
type IntegrationService interface {
	// AuthURL returns the consent URL for an OAuth provider.
	AuthURL(provider domain.Provider, state string) (string, error)

	// Connect exchanges an authorization code, stores the integration and
	// starts indexing in the background.
	Connect(ctx context.Context, owner string, provider domain.Provider, code string) (*domain.Integration, error)

	// AddLocal registers a filesystem root and starts indexing in the background.
	AddLocal(ctx context.Context, owner, root string) (*domain.Integration, error)

	// TriggerIndexing starts one background pass per integration of owner.
	TriggerIndexing(ctx context.Context, owner string) error

	// IndexNow runs passes for owner synchronously.
	IndexNow(ctx context.Context, owner string, provider *domain.Provider) ([]domain.PassReport, error)

	// Status lists the owner's integrations with their sync status.
	Status(ctx context.Context, owner string) ([]domain.Integration, error)

	// Disconnect removes an integration and its documents.
	Disconnect(ctx context.Context, owner string, provider domain.Provider) error

	// Watch re-indexes integrations whose sources report changes until
	// ctx is done.
	Watch(ctx context.Context, owner string) error

	// Wait blocks until background passes finish.
	Wait()
}

// InspectService reports on the index contents.
type InspectService interface {
	Stats(ctx context.Context) (domain.StoreStats, error)
	ListChunks(ctx context.Context, limit int) ([]domain.ChunkPreview, error)
}
