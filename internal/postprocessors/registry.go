// Package postprocessors wires the text segmenters. The pipeline looks a
// segmenter up by the policy a normaliser chose for each document.
package postprocessors

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// BuilderFunc creates a Segmenter from the indexing configuration.
type BuilderFunc func(cfg domain.IndexingConfig, counter driven.TokenCounter) driven.Segmenter

// Registry maps segment policies to their builders.
type Registry struct {
	builders map[domain.SegmentPolicy]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[domain.SegmentPolicy]BuilderFunc)}
}

// Register adds a builder for a policy, replacing any previous one.
func (r *Registry) Register(policy domain.SegmentPolicy, builder BuilderFunc) {
	r.builders[policy] = builder
}

// Build creates the segmenter for a policy.
func (r *Registry) Build(
	policy domain.SegmentPolicy, cfg domain.IndexingConfig, counter driven.TokenCounter,
) (driven.Segmenter, error) {
	builder, ok := r.builders[policy]
	if !ok {
		return nil, fmt.Errorf("unknown segment policy: %s", policy)
	}
	return builder(cfg, counter), nil
}

// BuildAll creates one segmenter per registered policy.
func (r *Registry) BuildAll(
	cfg domain.IndexingConfig, counter driven.TokenCounter,
) map[domain.SegmentPolicy]driven.Segmenter {
	out := make(map[domain.SegmentPolicy]driven.Segmenter, len(r.builders))
	for policy, builder := range r.builders {
		out[policy] = builder(cfg, counter)
	}
	return out
}

// Policies returns the registered policies in sorted order.
func (r *Registry) Policies() []domain.SegmentPolicy {
	out := make([]domain.SegmentPolicy, 0, len(r.builders))
	for p := range r.builders {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
