// Package hashing provides an offline embedding service based on signed
// feature hashing of word unigrams and bigrams. It needs no model download
// or network access, so it is the default embedder; semantic quality is
// that of a bag-of-words model.
package hashing

import (
	"context"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/custodia-labs/inkling/internal/adapters/driven/embedding"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// DefaultDimensions matches the 384-wide sentence-embedding models.
const DefaultDimensions = 384

// ModelName identifies vectors produced by this embedder.
const ModelName = "hashing-bow-v1"

// EmbeddingService implements driven.EmbeddingService.
type EmbeddingService struct {
	dimensions int
}

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// NewEmbeddingService creates a hashing embedder with the given width.
func NewEmbeddingService(dimensions int) *EmbeddingService {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &EmbeddingService{dimensions: dimensions}
}

// Embed hashes each term into a bucket with a hash-derived sign.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, s.dimensions)
	words := terms(text)
	for i, w := range words {
		s.add(vec, w, 1)
		if i > 0 {
			s.add(vec, words[i-1]+" "+w, 0.5)
		}
	}
	return embedding.Normalize(vec), nil
}

// EmbedBatch embeds each text independently.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (s *EmbeddingService) add(vec []float32, term string, weight float32) {
	h := fnv.New64a()
	h.Write([]byte(term)) //nolint:errcheck
	sum := h.Sum64()
	idx := int(sum % uint64(len(vec)))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

func terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the model identifier.
func (s *EmbeddingService) ModelName() string { return ModelName }

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error { return nil }

// Close releases resources.
func (s *EmbeddingService) Close() error { return nil }
