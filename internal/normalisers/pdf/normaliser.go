// Package pdf extracts the text layer of PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the PDF content type.
const MIMEType = "application/pdf"

// Normaliser handles PDF documents. Scanned PDFs without a text layer
// produce empty text and are skipped by the indexer.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the normaliser in logs.
func (n *Normaliser) Name() string { return "pdf" }

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise reads the text of every page and takes the display name from
// the document info Title when set.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.NormalisedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, title, err := extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: pdf: %w", domain.ErrConversion, err)
	}

	doc := raw.BaseDocument()
	if title != "" {
		doc.DisplayName = title
	}

	return []domain.NormalisedDocument{{
		Document: doc,
		Text:     text,
		Policy:   domain.SegmentSemantic,
	}}, nil
}

// extract recovers from panics because the parser panics on some
// malformed object streams.
func extract(content []byte) (text, title string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed document: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", "", err
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", "", err
	}
	body, err := io.ReadAll(plain)
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(reader.Trailer().Key("Info").Key("Title").Text())
	return strings.TrimSpace(string(body)), title, nil
}
