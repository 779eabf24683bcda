// Package gmail lists and fetches a window of recent Gmail messages.
package gmail

import (
	"context"
	"fmt"
	"sync"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/custodia-labs/inkling/internal/connectors/google"
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/logger"
)

// Verify interface compliance.
var (
	_ driven.Connector            = (*Connector)(nil)
	_ driven.CompletenessReporter = (*Connector)(nil)
)

const userID = "me"

// Connector reads the most recent MaxResults messages. Older messages are
// outside the window, so a listing that had more pages is incomplete.
type Connector struct {
	svc     *gmailapi.Service
	cfg     Config
	limiter *google.RateLimiter

	mu       sync.Mutex
	complete bool
}

// NewConnector creates a connector over an authenticated service.
func NewConnector(svc *gmailapi.Service, cfg Config, limiter *google.RateLimiter) *Connector {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.ServiceGmail)
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	return &Connector{svc: svc, cfg: cfg, limiter: limiter}
}

func (c *Connector) Provider() domain.Provider { return domain.ProviderGmail }

// ListItems returns the ids of the newest messages.
func (c *Connector) ListItems(ctx context.Context) ([]domain.ItemHandle, error) {
	call := c.svc.Users.Messages.List(userID).MaxResults(c.cfg.MaxResults).Context(ctx)
	if len(c.cfg.LabelIDs) > 0 {
		call = call.LabelIds(c.cfg.LabelIDs...)
	}
	if c.cfg.Query != "" {
		call = call.Q(c.cfg.Query)
	}

	var resp *gmailapi.ListMessagesResponse
	err := c.limiter.Do(ctx, func() error {
		var err error
		resp, err = call.Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", google.Classify(err))
	}

	c.mu.Lock()
	c.complete = resp.NextPageToken == ""
	c.mu.Unlock()

	items := make([]domain.ItemHandle, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		items = append(items, domain.ItemHandle{ExternalID: m.Id})
	}
	logger.Debug("Gmail listed %d messages (more pages: %t)", len(items), resp.NextPageToken != "")
	return items, nil
}

// Complete reports whether the last listing covered the whole mailbox.
func (c *Connector) Complete() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.complete
}

// FetchContent loads one message in full format.
func (c *Connector) FetchContent(ctx context.Context, item domain.ItemHandle) (*domain.RawDocument, error) {
	var msg *gmailapi.Message
	err := c.limiter.Do(ctx, func() error {
		var err error
		msg, err = c.svc.Users.Messages.Get(userID, item.ExternalID).Format("full").Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get message %s: %w", item.ExternalID, google.ClassifyItem(err))
	}
	return MessageToRawDocument(msg, item)
}

func (c *Connector) Close() error { return nil }
