package normalisers

import (
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/normalisers/docx"
	"github.com/custodia-labs/inkling/internal/normalisers/eml"
	"github.com/custodia-labs/inkling/internal/normalisers/gdrive"
	"github.com/custodia-labs/inkling/internal/normalisers/gmail"
	"github.com/custodia-labs/inkling/internal/normalisers/html"
	"github.com/custodia-labs/inkling/internal/normalisers/markdown"
	"github.com/custodia-labs/inkling/internal/normalisers/pdf"
	"github.com/custodia-labs/inkling/internal/normalisers/plaintext"
	"github.com/custodia-labs/inkling/internal/normalisers/slack"
)

// RegisterDefaults registers the built-in normalisers.
func RegisterDefaults(r *Registry, cfg domain.IndexingConfig) {
	r.Register(plaintext.New())
	r.Register(markdown.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(pdf.New())
	r.Register(eml.New())
	r.Register(gmail.New())
	r.Register(gdrive.New())
	r.Register(slack.New(cfg.SessionGap()))
}

// Defaults returns a registry with every built-in normaliser.
func Defaults(cfg domain.IndexingConfig) *Registry {
	r := NewRegistry()
	RegisterDefaults(r, cfg)
	return r
}
