// Package tui is the interactive terminal front end: a search box with
// ranked results and a list of connected sources.
package tui

import (
	"github.com/custodia-labs/inkling/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
)

// Ports aggregates the driving ports the TUI calls into.
type Ports struct {
	// Search answers queries. Required.
	Search driving.SearchService

	// Integrations lists sources and triggers re-indexing. Optional; the
	// sources view reports it as unavailable when nil.
	Integrations driving.IntegrationService

	// Owner scopes integration calls.
	Owner string

	// Open launches a result's origin URL. Optional.
	Open search.Opener
}

// Validate ensures the required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
