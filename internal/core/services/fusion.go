package services

import (
	"sort"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// DefaultRRFK is the Reciprocal Rank Fusion damping constant.
const DefaultRRFK = 60

// ReciprocalRankFusion merges ranked candidate lists. A candidate at
// 0-based rank r in a list gains 1/(k+r+1); contributions from several
// lists add up. The result is ordered by fused score descending, with
// ties kept in first-discovery order across the lists as given.
//
// Input scores are ignored: only ranks matter.
func ReciprocalRankFusion(k int, lists ...[]domain.Candidate) []domain.Candidate {
	index := make(map[int64]int)
	var fused []domain.Candidate

	for _, list := range lists {
		for rank, c := range list {
			contribution := 1.0 / float64(k+rank+1)
			if i, ok := index[c.ChunkID]; ok {
				fused[i].Score += contribution
				continue
			}
			index[c.ChunkID] = len(fused)
			fused = append(fused, domain.Candidate{
				ChunkID:    c.ChunkID,
				DocumentID: c.DocumentID,
				Score:      contribution,
			})
		}
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})
	return fused
}

// FilterMinScore drops candidates scoring below minScore.
func FilterMinScore(candidates []domain.Candidate, minScore float64) []domain.Candidate {
	if minScore <= 0 {
		return candidates
	}
	kept := candidates[:0:0]
	for _, c := range candidates {
		if c.Score >= minScore {
			kept = append(kept, c)
		}
	}
	return kept
}

// CollapseByDocument keeps the best chunk per document. Input must be
// sorted by score descending; output keeps that order.
func CollapseByDocument(candidates []domain.Candidate) []domain.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.DocumentID]; dup {
			continue
		}
		seen[c.DocumentID] = struct{}{}
		out = append(out, c)
	}
	return out
}
