package services

import (
	"context"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
)

// Ensure InspectService implements the interface.
var _ driving.InspectService = (*InspectService)(nil)

// InspectService reports on index contents.
type InspectService struct {
	chunks driven.ChunkStore
}

// NewInspectService creates a new inspect service.
func NewInspectService(chunks driven.ChunkStore) *InspectService {
	return &InspectService{chunks: chunks}
}

// Stats returns document and chunk counts.
func (s *InspectService) Stats(ctx context.Context) (domain.StoreStats, error) {
	return s.chunks.Stats(ctx)
}

// ListChunks previews up to limit stored chunks.
func (s *InspectService) ListChunks(ctx context.Context, limit int) ([]domain.ChunkPreview, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.chunks.ListChunks(ctx, limit)
}
