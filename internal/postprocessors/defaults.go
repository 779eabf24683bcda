package postprocessors

import (
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/postprocessors/chunker"
	"github.com/custodia-labs/inkling/internal/postprocessors/semantic"
)

// RegisterDefaults registers the built-in segmenters.
func RegisterDefaults(r *Registry) {
	r.Register(domain.SegmentSemantic, buildSemantic)
	r.Register(domain.SegmentRecursive, buildRecursive)
}

// Defaults returns segmenters for every built-in policy.
func Defaults(cfg domain.IndexingConfig, counter driven.TokenCounter) map[domain.SegmentPolicy]driven.Segmenter {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildAll(cfg, counter)
}

// buildSemantic budgets chunks in embedder tokens (semantic_chunk_tokens).
func buildSemantic(cfg domain.IndexingConfig, counter driven.TokenCounter) driven.Segmenter {
	return semantic.New(semantic.WithBudget(cfg.SemanticChunkTokens), semantic.WithCounter(counter))
}

// buildRecursive sizes chunks in characters (chunk_size, chunk_overlap).
func buildRecursive(cfg domain.IndexingConfig, _ driven.TokenCounter) driven.Segmenter {
	return chunker.New(chunker.WithChunkSize(cfg.ChunkSize), chunker.WithOverlap(cfg.ChunkOverlap))
}
