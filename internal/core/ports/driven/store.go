package driven

import (
	"context"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// ChunkStore is the durable record of documents, chunks, vectors and the
// lexical index. It must tolerate concurrent readers during a write.
type ChunkStore interface {
	// UpsertDocument inserts or updates a document keyed by
	// (IntegrationID, ExternalID) and returns its ID.
	UpsertDocument(ctx context.Context, doc *domain.Document) (string, error)

	// ReplaceChunks atomically swaps a document's chunk set.
	// On failure the previous set remains. Errors wrap domain.ErrStoreWrite.
	ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error

	// LexicalQuery ranks chunks by BM25, higher score is better.
	LexicalQuery(ctx context.Context, text string, limit int) ([]domain.Candidate, error)

	// FetchAllVectors returns every stored chunk vector.
	FetchAllVectors(ctx context.Context) ([]domain.StoredVector, error)

	// ResolveChunks loads display fields for chunk IDs. Missing IDs are omitted.
	ResolveChunks(ctx context.Context, ids []int64) (map[int64]domain.QueryResult, error)

	// GetChunks returns a document's chunks ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, documentID string) error

	// ListDocumentKeys maps external ID to document ID for one integration.
	ListDocumentKeys(ctx context.Context, integrationID string) (map[string]string, error)

	// Stats summarises the store.
	Stats(ctx context.Context) (domain.StoreStats, error)

	// ListChunks previews stored chunks.
	ListChunks(ctx context.Context, limit int) ([]domain.ChunkPreview, error)
}

// IntegrationStore persists connected sources and their sync status.
type IntegrationStore interface {
	TokenSaver

	// Save upserts by (Owner, Provider) and fills in ID when new.
	Save(ctx context.Context, integration *domain.Integration) error

	// Get returns domain.ErrNotFound for unknown IDs.
	Get(ctx context.Context, id string) (*domain.Integration, error)

	// GetByOwner returns the owner's integration for a provider.
	GetByOwner(ctx context.Context, owner string, provider domain.Provider) (*domain.Integration, error)

	// ListByOwner lists an owner's integrations.
	ListByOwner(ctx context.Context, owner string) ([]domain.Integration, error)

	// Delete removes an integration together with its documents.
	Delete(ctx context.Context, id string) error

	// SetSyncStatus applies a state machine transition.
	// Forbidden transitions return domain.ErrInvalidTransition.
	SetSyncStatus(ctx context.Context, id string, status domain.SyncStatus, lastErr string) error
}
