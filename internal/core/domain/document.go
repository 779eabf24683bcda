package domain

import "time"

// Document is a logical source item: a file, an email, a cloud file, or a
// chat-derived session. Identity is (IntegrationID, ExternalID).
type Document struct {
	// ID is the store-wide identifier.
	ID string

	// IntegrationID references the integration this document came from.
	IntegrationID string

	// ExternalID is stable per connector item (path, message id, channel_session).
	ExternalID string

	// Owner is the user the integration belongs to.
	Owner string

	// DisplayName is the human-readable title.
	DisplayName string

	// ContentType is the source MIME type (e.g. text/email).
	ContentType string

	// OriginURL links back to the item in its source system.
	OriginURL string

	// CreatedAt is the source-reported creation time.
	CreatedAt time.Time

	// ModifiedAt is the source-reported modification time.
	ModifiedAt time.Time

	// LastSyncedAt is set by the store on every upsert.
	LastSyncedAt time.Time
}

// Chunk is a contiguous slice of a document's cleaned text.
type Chunk struct {
	// ID is assigned by the store and stable for the chunk's lifetime.
	ID int64

	// DocumentID references the owning document.
	DocumentID string

	// Text is never empty after trimming.
	Text string

	// Embedding may be a zero-vector sentinel when embedding was skipped.
	Embedding []float32

	// Position is the order within the document, starting at 0.
	Position int

	// AddedAt is when the chunk was written.
	AddedAt time.Time
}

// IsSentinel reports whether the chunk carries a zero-vector embedding.
func (c *Chunk) IsSentinel() bool {
	return IsZeroVector(c.Embedding)
}

// IsZeroVector reports whether every component of v is zero.
func IsZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// SegmentPolicy selects how a document's text is split into chunks.
type SegmentPolicy string

const (
	// SegmentSemantic splits on natural boundaries within a token budget.
	SegmentSemantic SegmentPolicy = "semantic"

	// SegmentRecursive splits by separator hierarchy with a fixed overlap.
	SegmentRecursive SegmentPolicy = "recursive"
)

// NormalisedDocument is the output of a source normaliser: metadata plus
// cleaned full text, ready for segmentation.
type NormalisedDocument struct {
	// Document carries the metadata. ID and IntegrationID are filled by the pipeline.
	Document Document

	// Text is the full text before encoding repair.
	Text string

	// Policy picks the segmenter.
	Policy SegmentPolicy
}

// StoreStats summarises the chunk store contents.
type StoreStats struct {
	Documents      int
	Chunks         int
	SentinelChunks int
}

// ChunkPreview is a truncated view of a stored chunk.
type ChunkPreview struct {
	ID           int64
	DocumentName string
	Text         string
}
