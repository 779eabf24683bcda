// Package gmail normalises Gmail API messages fetched in full format.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	// MIMEType marks a payload holding a JSON-encoded gmail.Message.
	MIMEType = "application/x-gmail-message+json"

	// ContentType is recorded on indexed email documents.
	ContentType = "text/email"

	// MinBodyLength is the trimmed body length below which the snippet is appended.
	MinBodyLength = 50

	defaultSubject = "No Subject"
	originURL      = "https://mail.google.com/mail/u/0/#inbox/"
)

var tag = regexp.MustCompile(`<[^<]+?>`)

// Normaliser turns a Gmail message into one email document.
type Normaliser struct{}

// New creates a new Gmail normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the normaliser in logs.
func (n *Normaliser) Name() string { return "gmail" }

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 90 // Connector-specific
}

// Normalise walks the MIME tree and falls back to the snippet for
// near-empty bodies.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.NormalisedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	var msg gmailapi.Message
	if err := json.Unmarshal(raw.Content, &msg); err != nil {
		return nil, fmt.Errorf("%w: gmail message: %w", domain.ErrConversion, err)
	}
	if msg.Id == "" {
		return nil, fmt.Errorf("%w: gmail message without id", domain.ErrConversion)
	}

	subject := defaultSubject
	var body string
	if msg.Payload != nil {
		if s := header(msg.Payload, "Subject"); s != "" {
			subject = s
		}
		body = Body(msg.Payload)
	}
	if len(strings.TrimSpace(body)) < MinBodyLength {
		body += "\n\n" + msg.Snippet
	}

	sent := time.UnixMilli(msg.InternalDate).UTC()
	doc := domain.Document{
		ExternalID:  msg.Id,
		DisplayName: subject,
		ContentType: ContentType,
		OriginURL:   originURL + msg.Id,
		CreatedAt:   sent,
		ModifiedAt:  sent,
	}

	return []domain.NormalisedDocument{{
		Document: doc,
		Text:     body,
		Policy:   domain.SegmentSemantic,
	}}, nil
}

func header(part *gmailapi.MessagePart, name string) string {
	for _, h := range part.Headers {
		if h.Name == name {
			return h.Value
		}
	}
	return ""
}

// Body concatenates every text/plain part verbatim and every text/html
// part with each tag replaced by a space, in tree order.
func Body(payload *gmailapi.MessagePart) string {
	var parts []string
	if len(payload.Parts) == 0 {
		if text, ok := partText(payload); ok {
			parts = append(parts, text)
		}
		return strings.Join(parts, "\n")
	}

	var walk func([]*gmailapi.MessagePart)
	walk = func(list []*gmailapi.MessagePart) {
		for _, p := range list {
			if len(p.Parts) > 0 {
				walk(p.Parts)
				continue
			}
			if p.MimeType != "text/plain" && p.MimeType != "text/html" {
				continue
			}
			if text, ok := partText(p); ok {
				parts = append(parts, text)
			}
		}
	}
	walk(payload.Parts)
	return strings.Join(parts, "\n")
}

func partText(p *gmailapi.MessagePart) (string, bool) {
	if p.Body == nil || p.Body.Data == "" {
		return "", false
	}
	text := decode(p.Body.Data)
	if p.MimeType == "text/html" {
		text = tag.ReplaceAllString(text, " ")
	}
	return text, true
}

// decode reads base64url data, padding it first. Undecodable data yields "".
func decode(data string) string {
	if rem := len(data) % 4; rem != 0 {
		data += strings.Repeat("=", 4-rem)
	}
	b, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return ""
	}
	return string(b)
}
