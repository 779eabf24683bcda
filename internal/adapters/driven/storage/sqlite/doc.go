// Package sqlite implements the chunk and integration stores on SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database file holds:
//
//   - integrations: connected sources, OAuth tokens, sync status
//   - documents: keyed by (integration_id, external_id)
//   - chunks: text, little-endian float32 embedding blob, position
//   - chunks_fts: FTS5 external-content index over chunk text, kept in
//     step with chunks by triggers and ranked with bm25()
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory (NNN_name.up.sql), recorded in schema_migrations.
//
// # Concurrency
//
// The database runs in WAL mode so queries proceed while a chunk replace
// for another document is in flight. ReplaceChunks runs in one transaction,
// so readers see either the old or the new chunk set.
package sqlite
