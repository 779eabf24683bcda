package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized
	}
	var rerr *oauth2.RetrieveError
	return errors.As(err, &rerr)
}

// IsForbidden returns true if the error indicates insufficient permissions.
// Quota errors reported as 403 are not forbidden.
func IsForbidden(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusForbidden && !isQuotaReason(gerr)
	}
	return false
}

// IsRateLimited returns true for 429 responses and 403 quota responses.
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || isQuotaReason(gerr)
	}
	return false
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusNotFound
	}
	return false
}

func isQuotaReason(gerr *googleapi.Error) bool {
	for _, item := range gerr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}

// retryAfter reads the Retry-After header of a rate-limited response.
func retryAfter(err error) time.Duration {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Header == nil {
		return 0
	}
	secs, convErr := strconv.Atoi(gerr.Header.Get("Retry-After"))
	if convErr != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// Classify maps a Google API error onto the connector taxonomy: rejected
// credentials become domain.ErrConnectorAuth, context errors pass through
// and everything else becomes domain.ErrConnectorFetch.
func Classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, domain.ErrConnectorAuth), errors.Is(err, domain.ErrConnectorFetch):
		return err
	case IsUnauthorized(err), IsForbidden(err):
		return fmt.Errorf("%w: %w", domain.ErrConnectorAuth, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrConnectorFetch, err)
	}
}

// ClassifyItem is Classify for a call about a single item. A 403 there
// means this item cannot be read (export too large, download disabled,
// not shared) while the credentials still work, so it is a fetch error.
func ClassifyItem(err error) error {
	if IsForbidden(err) {
		return fmt.Errorf("%w: %w", domain.ErrConnectorFetch, err)
	}
	return Classify(err)
}
