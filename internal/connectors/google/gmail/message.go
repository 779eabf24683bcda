package gmail

import (
	"fmt"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/inkling/internal/core/domain"
	gmailnorm "github.com/custodia-labs/inkling/internal/normalisers/gmail"
)

// MessageToRawDocument encodes a full-format message as the payload the
// Gmail normaliser reads.
func MessageToRawDocument(msg *gmailapi.Message, item domain.ItemHandle) (*domain.RawDocument, error) {
	content, err := msg.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("%w: encode message %s: %w", domain.ErrConnectorFetch, msg.Id, err)
	}
	if item.ModifiedAt.IsZero() && msg.InternalDate > 0 {
		item.ModifiedAt = time.UnixMilli(msg.InternalDate).UTC()
	}

	return &domain.RawDocument{
		Item:     item,
		Provider: domain.ProviderGmail,
		MIMEType: gmailnorm.MIMEType,
		Content:  content,
		Metadata: map[string]string{
			"thread_id": msg.ThreadId,
			"snippet":   msg.Snippet,
		},
	}, nil
}
