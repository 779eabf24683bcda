package normalisers

import (
	"context"
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry maps MIME types to normalisers ordered by priority.
type Registry struct {
	mu     sync.RWMutex
	byType map[string][]driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[string][]driven.Normaliser)}
}

// Register adds n for every type it supports.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range n.SupportedMIMETypes() {
		t = baseType(t)
		list := append(r.byType[t], n)
		sort.SliceStable(list, func(i, j int) bool { return list[i].Priority() > list[j].Priority() })
		r.byType[t] = list
	}
}

// Get returns the highest-priority normaliser for mimeType. Parameters
// such as charset are ignored, and unknown text/* types fall back to
// text/plain.
func (r *Registry) Get(mimeType string) (driven.Normaliser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t := baseType(mimeType)
	if list := r.byType[t]; len(list) > 0 {
		return list[0], true
	}
	if strings.HasPrefix(t, "text/") {
		if list := r.byType["text/plain"]; len(list) > 0 {
			return list[0], true
		}
	}
	return nil, false
}

// SupportedMIMETypes returns every registered type in sorted order.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byType))
	for t := range r.byType {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Normalise dispatches raw to its normaliser.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.NormalisedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	n, ok := r.Get(raw.MIMEType)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported type %q", domain.ErrConversion, raw.MIMEType)
	}
	docs, err := n.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Name(), err)
	}
	return docs, nil
}

func baseType(mimeType string) string {
	if t, _, err := mime.ParseMediaType(mimeType); err == nil {
		return t
	}
	t, _, _ := strings.Cut(mimeType, ";")
	return strings.ToLower(strings.TrimSpace(t))
}
