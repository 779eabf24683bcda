package domain

import (
	"context"
	"errors"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedProvider indicates an unknown integration provider.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrInvalidTransition indicates a sync status change the state machine forbids.
	ErrInvalidTransition = errors.New("invalid sync status transition")

	// ErrEmbeddingUnavailable indicates the embedding service could not be reached.
	// Search degrades to lexical-only results.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// Ingestion errors.

	// ErrConnectorAuth indicates the source rejected our credentials.
	// Fatal for the indexing pass.
	ErrConnectorAuth = errors.New("connector authentication rejected")

	// ErrConnectorFetch indicates a single item could not be fetched.
	// The item is skipped.
	ErrConnectorFetch = errors.New("connector fetch failed")

	// ErrConversion indicates a payload could not be turned into text.
	// The document is skipped.
	ErrConversion = errors.New("conversion failed")

	// ErrEmbedding indicates the embedder failed for a batch or item.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStoreWrite indicates an atomic chunk replace failed.
	// The previous chunk set stays authoritative.
	ErrStoreWrite = errors.New("store write failed")
)

// IsFatal reports whether err must abort an indexing pass.
func IsFatal(err error) bool {
	return errors.Is(err, ErrConnectorAuth) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
