// Package gdrive normalises Google Docs exported as plain text.
package gdrive

import (
	"context"
	"strings"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the Drive type of native Google Docs. The payload is the
// text/plain export.
const MIMEType = "application/vnd.google-apps.document"

// Normaliser handles exported Google Docs.
type Normaliser struct{}

// New creates a new Drive normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

func (n *Normaliser) Name() string { return "gdrive" }

func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

func (n *Normaliser) Priority() int {
	return 90
}

// Normalise keeps the export as-is. Cloud files use the overlapping
// recursive split.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.NormalisedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	// Exports start with a UTF-8 BOM.
	text := strings.TrimPrefix(string(raw.Content), "\ufeff")

	return []domain.NormalisedDocument{{
		Document: raw.BaseDocument(),
		Text:     text,
		Policy:   domain.SegmentRecursive,
	}}, nil
}
