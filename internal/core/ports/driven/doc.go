// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ChunkStore: Documents, chunks, lexical index and raw vectors
//   - IntegrationStore: Connected sources, tokens and sync status
//   - ConnectorProvider: Creates connectors and exchanges OAuth codes
//   - Connector: Lists and fetches items from a source
//   - NormaliserRegistry: Turns raw payloads into text documents
//   - Segmenter: Splits text into chunks
//   - TextCleaner: Repairs encoding damage before segmentation
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: Without it, search is lexical-only and chunks get sentinels.
//   - VectorIndex: Without it, the semantic leg is skipped.
//   - TokenCounter: Without it, segmenters count runes.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
