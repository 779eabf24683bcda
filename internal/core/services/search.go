package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
	"github.com/custodia-labs/inkling/internal/logger"
)

// MaxLimit caps the number of results a single query may ask for.
const MaxLimit = 1000

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService is the hybrid retriever. It fuses BM25 and vector
// candidates with Reciprocal Rank Fusion and returns one result per document.
type SearchService struct {
	chunks    driven.ChunkStore
	vectors   driven.VectorIndex
	embedding driven.EmbeddingService
	cfg       domain.SearchConfig
}

// NewSearchService creates a new search service.
// The vectors and embedding parameters are optional (can be nil); without
// them search is lexical-only.
func NewSearchService(
	chunks driven.ChunkStore,
	vectors driven.VectorIndex,
	embedding driven.EmbeddingService,
	cfg domain.SearchConfig,
) *SearchService {
	if cfg.TopK <= 0 {
		cfg.TopK = 10
	}
	if cfg.RRFK <= 0 {
		cfg.RRFK = DefaultRRFK
	}
	if cfg.CandidateMultiplier <= 0 {
		cfg.CandidateMultiplier = 3
	}
	return &SearchService{
		chunks:    chunks,
		vectors:   vectors,
		embedding: embedding,
		cfg:       cfg,
	}
}

// Search runs the lexical and semantic legs in parallel, fuses them,
// collapses to one chunk per document and hydrates the top results.
// If the embedder fails the query degrades to lexical-only results.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.QueryResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.QueryResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.TopK
	}
	limit = min(limit, MaxLimit)
	minScore := opts.MinScore
	if minScore <= 0 {
		minScore = s.cfg.MinScore
	}
	candidates := limit * s.cfg.CandidateMultiplier
	logger.Debug("Limit: %d, candidates per leg: %d, min score: %g", limit, candidates, minScore)

	var lexical, semantic []domain.Candidate
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		lexical, err = s.chunks.LexicalQuery(gctx, query, candidates)
		if err != nil {
			return fmt.Errorf("lexical query: %w", err)
		}
		logger.Debug("Lexical leg: %d candidates", len(lexical))
		return nil
	})

	g.Go(func() error {
		semantic = s.semanticCandidates(gctx, query, candidates)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	fused := ReciprocalRankFusion(s.cfg.RRFK, lexical, semantic)
	fused = FilterMinScore(fused, minScore)
	fused = CollapseByDocument(fused)
	logger.Debug("Fused: %d documents", len(fused))

	// Hydrate before truncating so chunks deleted by a concurrent pass
	// are replaced by the next fused documents.
	results, err := s.hydrate(ctx, fused)
	if err != nil {
		return nil, fmt.Errorf("hydrate results: %w", err)
	}
	if len(results) > limit {
		results = results[:limit]
	}
	logger.Info("Final results: %d", len(results))
	return results, nil
}

// semanticCandidates embeds the query and scans the vector index. Any
// failure yields no candidates so the lexical leg still answers.
func (s *SearchService) semanticCandidates(ctx context.Context, query string, k int) []domain.Candidate {
	if s.embedding == nil || s.vectors == nil {
		logger.Debug("Semantic leg disabled")
		return nil
	}

	vec, err := s.embedding.Embed(ctx, query)
	if err != nil {
		logger.Warn("%v: %v (lexical results only)", domain.ErrEmbeddingUnavailable, err)
		return nil
	}

	hits, err := s.vectors.Search(ctx, vec, k)
	if err != nil {
		logger.Warn("Vector search failed: %v (lexical results only)", err)
		return nil
	}
	logger.Debug("Semantic leg: %d candidates", len(hits))

	out := make([]domain.Candidate, len(hits))
	for i, h := range hits {
		out[i] = domain.Candidate{ChunkID: h.ChunkID, DocumentID: h.DocumentID, Score: h.Similarity}
	}
	return out
}

// hydrate resolves display fields, preserving fused order. Chunks deleted
// since the candidate lists were built are dropped.
func (s *SearchService) hydrate(ctx context.Context, fused []domain.Candidate) ([]domain.QueryResult, error) {
	if len(fused) == 0 {
		return []domain.QueryResult{}, nil
	}

	ids := make([]int64, len(fused))
	for i, c := range fused {
		ids[i] = c.ChunkID
	}
	resolved, err := s.chunks.ResolveChunks(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make([]domain.QueryResult, 0, len(fused))
	for _, c := range fused {
		r, ok := resolved[c.ChunkID]
		if !ok {
			continue
		}
		r.Score = c.Score
		results = append(results, r)
	}
	return results, nil
}
