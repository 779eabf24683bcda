// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/inkling/internal/core/domain"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.QueryResult
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	ViewMenu ViewType = iota
	ViewSearch
	ViewSources
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewSearch:
		return "search"
	case ViewSources:
		return "sources"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// IntegrationsLoaded carries the owner's connected sources.
type IntegrationsLoaded struct {
	Integrations []domain.Integration
	Err          error
}

// IndexingTriggered reports whether background passes were started.
type IndexingTriggered struct {
	Err error
}

// Opened reports the outcome of opening a result's origin URL.
type Opened struct {
	URL string
	Err error
}
