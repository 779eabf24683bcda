package domain

import "time"

// ItemHandle identifies one listable item in a connector.
// Handles are cheap; content is fetched separately.
type ItemHandle struct {
	// ExternalID is the connector-stable identifier of the item.
	ExternalID string

	// Name is a display hint (file name, channel name).
	Name string

	// MIMEType is set when known at listing time.
	MIMEType string

	// ModifiedAt is set when known at listing time.
	ModifiedAt time.Time

	// Metadata carries connector-specific listing data.
	Metadata map[string]string
}

// RawDocument is the connector payload for one item, before normalisation.
type RawDocument struct {
	// Item is the handle this payload was fetched for.
	Item ItemHandle

	// Provider is the integration provider that produced the payload.
	Provider Provider

	// MIMEType identifies the payload format.
	MIMEType string

	// Content is the raw payload bytes.
	Content []byte

	// Metadata carries connector-specific values (subject, url, timestamps).
	Metadata map[string]string
}

// Well-known RawDocument.Metadata keys.
const (
	MetaTitle   = "title"
	MetaURL     = "url"
	MetaCreated = "created" // RFC 3339
	MetaChannel = "channel"
)

// BaseDocument returns the document metadata a normaliser starts from:
// identity from the item, title and URL from metadata.
func (r *RawDocument) BaseDocument() Document {
	doc := Document{
		ExternalID:  r.Item.ExternalID,
		DisplayName: r.Item.Name,
		ContentType: r.MIMEType,
		ModifiedAt:  r.Item.ModifiedAt,
	}
	if title := r.Metadata[MetaTitle]; title != "" {
		doc.DisplayName = title
	}
	if doc.DisplayName == "" {
		doc.DisplayName = r.Item.ExternalID
	}
	doc.OriginURL = r.Metadata[MetaURL]
	if created, err := time.Parse(time.RFC3339, r.Metadata[MetaCreated]); err == nil {
		doc.CreatedAt = created
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.ModifiedAt
	}
	return doc
}
