// Package linear implements exact nearest-neighbour search by scanning
// every stored vector.
package linear

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// VectorSource supplies the vectors to scan.
type VectorSource interface {
	FetchAllVectors(ctx context.Context) ([]domain.StoredVector, error)
}

// Index scores query vectors against every stored chunk vector.
// Vectors are L2-normalised, so the dot product is the cosine similarity.
type Index struct {
	source VectorSource
}

// New creates a linear index over source.
func New(source VectorSource) *Index {
	return &Index{source: source}
}

// Search returns the k most similar chunks. Sentinel vectors and vectors
// of a different width are skipped. Ties keep chunk ID order.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 || len(query) == 0 {
		return nil, nil
	}

	vectors, err := ix.source.FetchAllVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("vector scan: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(vectors))
	for _, v := range vectors {
		if len(v.Vector) != len(query) || domain.IsZeroVector(v.Vector) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    v.ChunkID,
			DocumentID: v.DocumentID,
			Similarity: dot(query, v.Vector),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
