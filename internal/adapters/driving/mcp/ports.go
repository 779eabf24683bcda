package mcp

import (
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Search answers queries. Required.
	Search driving.SearchService

	// Integrations reports sync status. Optional.
	Integrations driving.IntegrationService

	// Inspect reports index size. Optional.
	Inspect driving.InspectService

	// Owner scopes integration status.
	Owner string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
