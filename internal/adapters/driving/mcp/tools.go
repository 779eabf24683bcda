package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// DefaultLimit applies when the caller does not pass one.
const DefaultLimit = 10

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"free-text query"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of documents to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []ResultOutput `json:"results"`
	Count   int            `json:"count"`
}

// ResultOutput is one document's best chunk.
type ResultOutput struct {
	ID           int64   `json:"id"`
	DocumentName string  `json:"document_name"`
	ChunkText    string  `json:"chunk_text"`
	FusedScore   float64 `json:"fused_score"`
	Timestamp    string  `json:"timestamp,omitempty"`
	OriginURL    string  `json:"origin_url,omitempty"`
}

// StatusInput takes no arguments.
type StatusInput struct{}

// StatusOutput describes connected sources and index size.
type StatusOutput struct {
	Integrations []IntegrationOutput `json:"integrations"`
	Documents    int                 `json:"documents"`
	Chunks       int                 `json:"chunks"`
}

// IntegrationOutput is one connected source.
type IntegrationOutput struct {
	Provider     string `json:"provider"`
	Account      string `json:"account"`
	Status       string `json:"status"`
	LastError    string `json:"last_error,omitempty"`
	LastSyncedAt string `json:"last_synced_at,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the local index of files, email, documents and chat",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "status",
		Description: "List connected sources with their sync status",
	}, s.handleStatus)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchOutput{}, ErrEmptyQuery
	}
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	results, err := s.ports.Search.Search(ctx, input.Query, domain.SearchOptions{Limit: limit})
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ResultOutput, len(results)),
		Count:   len(results),
	}
	for i, r := range results {
		output.Results[i] = ResultOutput{
			ID:           r.ChunkID,
			DocumentName: r.DocumentName,
			ChunkText:    r.ChunkText,
			FusedScore:   r.Score,
			Timestamp:    formatTime(r.Timestamp),
			OriginURL:    r.OriginURL,
		}
	}
	return nil, output, nil
}

func (s *Server) handleStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	output, err := s.status(ctx)
	return nil, output, err
}

func (s *Server) status(ctx context.Context) (StatusOutput, error) {
	output := StatusOutput{Integrations: []IntegrationOutput{}}

	if s.ports.Integrations != nil {
		list, err := s.ports.Integrations.Status(ctx, s.ports.Owner)
		if err != nil {
			return output, err
		}
		for i := range list {
			output.Integrations = append(output.Integrations, integrationOutput(&list[i]))
		}
	}

	if s.ports.Inspect != nil {
		stats, err := s.ports.Inspect.Stats(ctx)
		if err != nil {
			return output, err
		}
		output.Documents = stats.Documents
		output.Chunks = stats.Chunks
	}
	return output, nil
}

func integrationOutput(in *domain.Integration) IntegrationOutput {
	return IntegrationOutput{
		Provider:     string(in.Provider),
		Account:      in.Account,
		Status:       string(in.SyncStatus),
		LastError:    in.LastError,
		LastSyncedAt: formatTime(in.LastSyncedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
