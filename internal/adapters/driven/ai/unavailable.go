package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*UnavailableEmbeddingService)(nil)

// UnavailableEmbeddingService stands in for an embedder that failed its
// startup check. Every call fails with domain.ErrEmbeddingUnavailable, so
// the indexer stores zero vectors and keeps chunks lexically searchable.
type UnavailableEmbeddingService struct {
	dims  int
	cause error
}

// NewUnavailableEmbeddingService returns an embedder that always fails
// with cause.
func NewUnavailableEmbeddingService(dims int, cause error) *UnavailableEmbeddingService {
	return &UnavailableEmbeddingService{dims: dims, cause: cause}
}

func (s *UnavailableEmbeddingService) err() error {
	switch {
	case s.cause == nil:
		return domain.ErrEmbeddingUnavailable
	case errors.Is(s.cause, domain.ErrEmbeddingUnavailable):
		return s.cause
	}
	return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, s.cause)
}

// Embed always fails.
func (s *UnavailableEmbeddingService) Embed(context.Context, string) ([]float32, error) {
	return nil, s.err()
}

// EmbedBatch always fails.
func (s *UnavailableEmbeddingService) EmbedBatch(context.Context, []string) ([][]float32, error) {
	return nil, s.err()
}

// Dimensions returns the configured width so sentinels match the index.
func (s *UnavailableEmbeddingService) Dimensions() int { return s.dims }

// ModelName returns "unavailable".
func (s *UnavailableEmbeddingService) ModelName() string { return "unavailable" }

// Ping always fails.
func (s *UnavailableEmbeddingService) Ping(context.Context) error { return s.err() }

// Close is a no-op.
func (s *UnavailableEmbeddingService) Close() error { return nil }

// ConnectEmbeddingService builds the configured embedder and checks it.
// When the check fails, indexing gets an UnavailableEmbeddingService and
// query is nil, so search answers with lexical results only. The returned
// error reports why; it is not fatal.
func ConnectEmbeddingService(cfg domain.EmbeddingConfig) (indexing, query driven.EmbeddingService, err error) {
	svc, err := CreateAndValidateEmbeddingService(cfg)
	if err != nil {
		return NewUnavailableEmbeddingService(cfg.Dimensions, err), nil, err
	}
	return svc, svc, nil
}
