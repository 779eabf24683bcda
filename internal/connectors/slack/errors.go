package slack

import (
	"context"
	"errors"
	"fmt"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// authErrors are Slack error codes that mean the token is no longer usable.
var authErrors = map[string]bool{
	"invalid_auth":     true,
	"not_authed":       true,
	"token_revoked":    true,
	"token_expired":    true,
	"account_inactive": true,
	"missing_scope":    true,
}

// retryDelay returns how long to wait before retrying a rate-limited call.
func retryDelay(err error) (time.Duration, bool) {
	var rl *slackapi.RateLimitedError
	if errors.As(err, &rl) {
		return rl.RetryAfter, true
	}
	return 0, false
}

// classify maps Slack errors onto the connector taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var serr slackapi.SlackErrorResponse
	if errors.As(err, &serr) && authErrors[serr.Err] {
		return fmt.Errorf("%w: %w", domain.ErrConnectorAuth, err)
	}
	if authErrors[err.Error()] {
		return fmt.Errorf("%w: %w", domain.ErrConnectorAuth, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrConnectorFetch, err)
}
