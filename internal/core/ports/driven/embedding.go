package driven

import "context"

// EmbeddingService maps text to L2-normalised fixed-dimension vectors.
type EmbeddingService interface {
	// Embed generates an embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// Results match calling Embed per item. Any failure fails the call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size.
	Dimensions() int

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Ping checks if the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// TokenCounter measures text in the units the embedder's budget uses.
type TokenCounter interface {
	CountTokens(text string) int
}

// VectorIndex answers nearest-neighbour queries over stored chunk vectors.
// The linear scan can be replaced by an approximate index without changing callers.
type VectorIndex interface {
	// Search returns up to k chunks by similarity, highest first.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)
}

// VectorHit is one semantic candidate.
type VectorHit struct {
	ChunkID    int64
	DocumentID string
	Similarity float64
}
