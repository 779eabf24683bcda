// Package eml normalises RFC 822 email files.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/normalisers/html"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles EML (email) documents.
type Normaliser struct{}

// New creates a new EML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name identifies the normaliser in logs.
func (n *Normaliser) Name() string { return "eml" }

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"message/rfc822"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise indexes the From/To/Date/Subject headers followed by the body.
// Plain text parts are preferred over HTML parts.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) ([]domain.NormalisedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConversion, err)
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	from := decodeHeader(msg.Header.Get("From"))
	to := decodeHeader(msg.Header.Get("To"))
	date := msg.Header.Get("Date")

	body, err := partText(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConversion, err)
	}

	var content strings.Builder
	for _, h := range [][2]string{{"From", from}, {"To", to}, {"Date", date}, {"Subject", subject}} {
		if h[1] != "" {
			fmt.Fprintf(&content, "%s: %s\n", h[0], h[1])
		}
	}
	content.WriteString("\n")
	content.WriteString(body)

	doc := raw.BaseDocument()
	if subject != "" {
		doc.DisplayName = subject
	}
	if sent, err := mail.ParseDate(date); err == nil {
		doc.CreatedAt = sent
		if doc.ModifiedAt.IsZero() {
			doc.ModifiedAt = sent
		}
	}

	return []domain.NormalisedDocument{{
		Document: doc,
		Text:     strings.TrimSpace(content.String()),
		Policy:   domain.SegmentSemantic,
	}}, nil
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header
	}
	return decoded
}

// partText returns the text of one MIME entity, recursing into multiparts.
func partText(contentType, encoding string, r io.Reader) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		return multipartText(r, params["boundary"])
	}
	if mediaType != "text/plain" && mediaType != "text/html" {
		return "", nil
	}

	body, err := io.ReadAll(decodeTransfer(encoding, r))
	if err != nil {
		return "", err
	}
	if mediaType == "text/html" {
		return html.Strip(string(body)), nil
	}
	return string(body), nil
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, newlineStripper{r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	}
	return r
}

// newlineStripper drops CR and LF so wrapped base64 decodes.
type newlineStripper struct{ r io.Reader }

func (s newlineStripper) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	out := p[:0]
	for _, c := range p[:n] {
		if c != '\r' && c != '\n' {
			out = append(out, c)
		}
	}
	return len(out), err
}

func multipartText(r io.Reader, boundary string) (string, error) {
	if boundary == "" {
		return "", errors.New("multipart without boundary")
	}

	mr := multipart.NewReader(r, boundary)
	var textParts, htmlParts []string
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		ct := part.Header.Get("Content-Type")
		text, err := partText(ct, part.Header.Get("Content-Transfer-Encoding"), part)
		part.Close()
		if err != nil || strings.TrimSpace(text) == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(ct), "text/html") {
			htmlParts = append(htmlParts, text)
		} else {
			textParts = append(textParts, text)
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), nil
	}
	return strings.Join(htmlParts, "\n"), nil
}
