package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

const uriScheme = "inkling://"

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Connected sources, sync status and index size",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "integrations/{provider}",
		Name:        "integration",
		Description: "Sync status of one connected source",
		MIMEType:    "application/json",
	}, s.handleIntegrationResource)
}

func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	output, err := s.status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}
	return jsonResource(req.Params.URI, output)
}

func (s *Server) handleIntegrationResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	provider := extractProvider(req.Params.URI)
	if provider == "" || s.ports.Integrations == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	list, err := s.ports.Integrations.Status(ctx, s.ports.Owner)
	if err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}
	for i := range list {
		if list[i].Provider == provider {
			return jsonResource(req.Params.URI, integrationOutput(&list[i]))
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractProvider extracts the provider from inkling://integrations/{provider}.
func extractProvider(uri string) domain.Provider {
	const prefix = uriScheme + "integrations/"

	rest, ok := strings.CutPrefix(uri, prefix)
	if !ok || rest == "" || strings.Contains(rest, "/") {
		return ""
	}
	return domain.Provider(rest)
}
