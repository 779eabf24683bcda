// Package domain defines the core business entities for inkling.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A logical source item (file, email, cloud doc, chat session)
//   - Chunk: A contiguous, embedded slice of a document's cleaned text
//   - QueryResult: One fused, per-document search hit
//   - Integration: A connected source owned by a user
//   - SyncStatus: The per-integration indexing state machine
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
