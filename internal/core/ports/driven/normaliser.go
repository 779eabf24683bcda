package driven

import (
	"context"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// Normaliser converts a raw payload into one or more text documents.
type Normaliser interface {
	// Name identifies the normaliser in logs.
	Name() string

	// SupportedMIMETypes returns the payload types this normaliser accepts.
	SupportedMIMETypes() []string

	// Priority breaks ties when several normalisers accept a type. Higher wins.
	Priority() int

	// Normalise returns the documents for a payload. Errors wrap domain.ErrConversion.
	Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.NormalisedDocument, error)
}

// NormaliserRegistry selects a normaliser for a payload.
type NormaliserRegistry interface {
	Register(n Normaliser)
	Get(mimeType string) (Normaliser, bool)
	Normalise(ctx context.Context, raw *domain.RawDocument) ([]domain.NormalisedDocument, error)
}

// Segmenter splits text into ordered, trimmed, non-empty chunk strings.
type Segmenter interface {
	Name() string
	Segment(text string) []string
}

// TextCleaner repairs garbled encoding and normalises text.
type TextCleaner interface {
	Clean(text string) string
}
