package domain

import "time"

// QueryResult is one entry of a fused result list. Not persisted.
type QueryResult struct {
	// ChunkID is the best-scoring chunk of the document.
	ChunkID int64 `json:"id"`

	// DocumentID is the owning document.
	DocumentID string `json:"-"`

	// DocumentName is the owning document's display name.
	DocumentName string `json:"document_name"`

	// ChunkText is the matched chunk.
	ChunkText string `json:"chunk_text"`

	// Score is the fused RRF score.
	Score float64 `json:"fused_score"`

	// Timestamp is the source-reported modification time.
	Timestamp time.Time `json:"timestamp"`

	// OriginURL links to the source item.
	OriginURL string `json:"origin_url,omitempty"`
}

// SearchOptions configures a hybrid query.
type SearchOptions struct {
	// Limit is top_k. Zero means the configured default.
	Limit int

	// MinScore drops fused candidates below it. Zero means the configured
	// default.
	MinScore float64
}

// Candidate is a chunk scored by a single retrieval leg, higher is better.
type Candidate struct {
	ChunkID    int64
	DocumentID string
	Score      float64
}

// StoredVector is one chunk vector as returned by a full vector scan.
type StoredVector struct {
	ChunkID    int64
	DocumentID string
	Vector     []float32
}
