package domain

import (
	"fmt"
	"time"
)

// EmbeddingProvider selects the embedder implementation.
type EmbeddingProvider string

const (
	EmbeddingHashing EmbeddingProvider = "hashing"
	EmbeddingOllama  EmbeddingProvider = "ollama"
	EmbeddingOpenAI  EmbeddingProvider = "openai"
)

// Config is the complete application configuration.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Search    SearchConfig    `toml:"search"`
	Indexing  IndexingConfig  `toml:"indexing"`
	Google    OAuthAppConfig  `toml:"google"`
	Slack     OAuthAppConfig  `toml:"slack"`
}

// StorageConfig locates the index database.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// EmbeddingConfig configures the embedder.
type EmbeddingConfig struct {
	Provider   EmbeddingProvider `toml:"provider"`
	Model      string            `toml:"model"`
	BaseURL    string            `toml:"base_url"`
	Dimensions int               `toml:"dimensions"`
	APIKey     string            `toml:"api_key"`
}

// SearchConfig tunes the hybrid retriever.
type SearchConfig struct {
	TopK                int     `toml:"top_k"`
	RRFK                int     `toml:"rrf_k"`
	MinScore            float64 `toml:"min_score"`
	CandidateMultiplier int     `toml:"candidate_multiplier"`
}

// IndexingConfig tunes the indexing pipeline.
type IndexingConfig struct {
	SemanticChunkTokens int `toml:"semantic_chunk_tokens"`
	ChunkSize           int `toml:"chunk_size"`
	ChunkOverlap        int `toml:"chunk_overlap"`
	SentinelThreshold   int `toml:"sentinel_threshold"`
	SessionGapSeconds   int `toml:"session_gap_seconds"`
	Workers             int `toml:"workers"`
	GmailMaxResults     int `toml:"gmail_max_results"`
}

// SessionGap returns the chat session gap as a duration.
func (c IndexingConfig) SessionGap() time.Duration {
	return time.Duration(c.SessionGapSeconds) * time.Second
}

// OAuthAppConfig holds the OAuth client registration for a provider.
type OAuthAppConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
}

// Configured reports whether a client id and secret are present.
func (c OAuthAppConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// DefaultRedirectURL is the loopback address the OAuth callback server
// listens on unless a provider's redirect_url says otherwise.
const DefaultRedirectURL = "http://localhost:8085/callback"

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Embedding: EmbeddingConfig{
			Provider:   EmbeddingHashing,
			Dimensions: 384,
		},
		Search: SearchConfig{
			TopK:                10,
			RRFK:                60,
			CandidateMultiplier: 3,
		},
		Indexing: IndexingConfig{
			SemanticChunkTokens: 500,
			ChunkSize:           1000,
			ChunkOverlap:        200,
			SentinelThreshold:   2000,
			SessionGapSeconds:   300,
			Workers:             1,
			GmailMaxResults:     20,
		},
		Google: OAuthAppConfig{
			RedirectURL: DefaultRedirectURL,
		},
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c Config) Validate() error {
	switch c.Embedding.Provider {
	case EmbeddingHashing, EmbeddingOllama, EmbeddingOpenAI:
	default:
		return fmt.Errorf("%w: embedding provider %q", ErrInvalidInput, c.Embedding.Provider)
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("%w: embedding dimensions must be positive", ErrInvalidInput)
	}
	if c.Search.TopK <= 0 || c.Search.RRFK < 0 || c.Search.CandidateMultiplier <= 0 {
		return fmt.Errorf("%w: search settings must be positive", ErrInvalidInput)
	}
	ix := c.Indexing
	if ix.SemanticChunkTokens <= 0 || ix.ChunkSize <= 0 || ix.SentinelThreshold <= 0 ||
		ix.SessionGapSeconds <= 0 || ix.Workers <= 0 || ix.GmailMaxResults <= 0 {
		return fmt.Errorf("%w: indexing settings must be positive", ErrInvalidInput)
	}
	if ix.ChunkOverlap < 0 || ix.ChunkOverlap >= ix.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size)", ErrInvalidInput)
	}
	return nil
}
