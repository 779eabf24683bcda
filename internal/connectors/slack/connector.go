// Package slack indexes public Slack channels as conversation sessions.
package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	slackapi "github.com/slack-go/slack"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/logger"
	slacknorm "github.com/custodia-labs/inkling/internal/normalisers/slack"
)

// Verify interface compliance.
var _ driven.Connector = (*Connector)(nil)

const (
	pageLimit  = 200
	maxRetries = 3
)

// DefaultRate stays under Slack's Tier 3 limit of about 50 calls a minute.
var DefaultRate = rate.Every(1200 * time.Millisecond)

// Connector lists the public channels the token is a member of and fetches
// their full history.
type Connector struct {
	client  *slackapi.Client
	limiter *rate.Limiter

	usersOnce sync.Once
	users     map[string]string
}

// NewConnector creates a connector over an authenticated client. A nil
// limiter uses DefaultRate.
func NewConnector(client *slackapi.Client, limiter *rate.Limiter) *Connector {
	if limiter == nil {
		limiter = rate.NewLimiter(DefaultRate, 5)
	}
	return &Connector{client: client, limiter: limiter}
}

func (c *Connector) Provider() domain.Provider { return domain.ProviderSlack }

// call runs fn under the limiter, sleeping through rate-limit responses.
func (c *Connector) call(ctx context.Context, fn func() error) error {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		err := fn()
		delay, limited := retryDelay(err)
		if !limited || attempt >= maxRetries {
			return err
		}
		logger.Debug("Slack rate limited, retrying in %s", delay)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// ListItems returns one item per readable public channel.
func (c *Connector) ListItems(ctx context.Context) ([]domain.ItemHandle, error) {
	var items []domain.ItemHandle
	cursor := ""
	for {
		var (
			channels []slackapi.Channel
			next     string
		)
		err := c.call(ctx, func() error {
			var err error
			channels, next, err = c.client.GetConversationsContext(ctx, &slackapi.GetConversationsParameters{
				Cursor:          cursor,
				ExcludeArchived: true,
				Limit:           pageLimit,
				Types:           []string{"public_channel"},
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("list channels: %w", classify(err))
		}

		for _, ch := range channels {
			if !ch.IsMember {
				continue
			}
			items = append(items, domain.ItemHandle{
				ExternalID: ch.ID,
				Name:       ch.Name,
				MIMEType:   slacknorm.MIMEType,
				Metadata:   map[string]string{domain.MetaChannel: ch.Name},
			})
		}
		if next == "" {
			break
		}
		cursor = next
	}

	logger.Debug("Slack listed %d channels", len(items))
	return items, nil
}

// FetchContent loads a channel's history, newest first as the API returns it.
func (c *Connector) FetchContent(ctx context.Context, item domain.ItemHandle) (*domain.RawDocument, error) {
	history := slacknorm.History{
		ChannelID:   item.ExternalID,
		ChannelName: item.Name,
		Users:       c.userNames(ctx),
	}

	cursor := ""
	for {
		var resp *slackapi.GetConversationHistoryResponse
		err := c.call(ctx, func() error {
			var err error
			resp, err = c.client.GetConversationHistoryContext(ctx, &slackapi.GetConversationHistoryParameters{
				ChannelID: item.ExternalID,
				Cursor:    cursor,
				Limit:     pageLimit,
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("history %s: %w", item.ExternalID, classify(err))
		}

		history.Messages = append(history.Messages, resp.Messages...)
		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		cursor = resp.ResponseMetaData.NextCursor
	}

	content, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("%w: encode history %s: %w", domain.ErrConnectorFetch, item.ExternalID, err)
	}
	if len(history.Messages) > 0 {
		if at, err := slacknorm.ParseTimestamp(history.Messages[0].Timestamp); err == nil {
			item.ModifiedAt = at
		}
	}

	return &domain.RawDocument{
		Item:     item,
		Provider: domain.ProviderSlack,
		MIMEType: slacknorm.MIMEType,
		Content:  content,
		Metadata: map[string]string{domain.MetaChannel: item.Name},
	}, nil
}

// userNames maps user ids to display names, loaded once per connector.
// A failed lookup leaves raw ids in the transcript.
func (c *Connector) userNames(ctx context.Context) map[string]string {
	c.usersOnce.Do(func() {
		var users []slackapi.User
		err := c.call(ctx, func() error {
			var err error
			users, err = c.client.GetUsersContext(ctx)
			return err
		})
		if err != nil {
			logger.Warn("Slack user lookup failed, using ids: %v", err)
			return
		}
		c.users = make(map[string]string, len(users))
		for _, u := range users {
			c.users[u.ID] = displayName(u)
		}
	})
	return c.users
}

func displayName(u slackapi.User) string {
	for _, s := range []string{u.Profile.DisplayName, u.RealName, u.Name} {
		if s != "" {
			return s
		}
	}
	return u.ID
}

func (c *Connector) Close() error { return nil }
