// Package drive lists and exports native Google Docs.
package drive

import (
	"context"
	"fmt"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/inkling/internal/connectors/google"
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/logger"
)

// Verify interface compliance.
var _ driven.Connector = (*Connector)(nil)

// Connector reads every Google Doc the account can see.
type Connector struct {
	svc     *drivev3.Service
	cfg     Config
	limiter *google.RateLimiter
}

// NewConnector creates a connector over an authenticated service.
func NewConnector(svc *drivev3.Service, cfg Config, limiter *google.RateLimiter) *Connector {
	if limiter == nil {
		limiter = google.NewRateLimiter(google.ServiceDrive)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	return &Connector{svc: svc, cfg: cfg, limiter: limiter}
}

func (c *Connector) Provider() domain.Provider { return domain.ProviderDrive }

// ListItems follows every result page.
func (c *Connector) ListItems(ctx context.Context) ([]domain.ItemHandle, error) {
	var items []domain.ItemHandle
	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(c.cfg.Query()).
			Fields(googleapi.Field(listFields)).
			PageSize(c.cfg.PageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		var resp *drivev3.FileList
		err := c.limiter.Do(ctx, func() error {
			var err error
			resp, err = call.Do()
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list files: %w", google.Classify(err))
		}

		for _, f := range resp.Files {
			items = append(items, FileToItem(f))
		}
		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	logger.Debug("Drive listed %d documents", len(items))
	return items, nil
}

// FetchContent exports one document as plain text.
func (c *Connector) FetchContent(ctx context.Context, item domain.ItemHandle) (*domain.RawDocument, error) {
	var content []byte
	err := c.limiter.Do(ctx, func() error {
		var err error
		content, err = exportText(ctx, c.svc, item.ExternalID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", item.ExternalID, google.ClassifyItem(err))
	}

	mimeType := item.MIMEType
	if mimeType == "" {
		mimeType = MimeTypeGoogleDoc
	}
	return &domain.RawDocument{
		Item:     item,
		Provider: domain.ProviderDrive,
		MIMEType: mimeType,
		Content:  content,
		Metadata: item.Metadata,
	}, nil
}

func (c *Connector) Close() error { return nil }
