package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

func apiError(code int, reasons ...string) error {
	gerr := &googleapi.Error{Code: code, Header: http.Header{}}
	for _, r := range reasons {
		gerr.Errors = append(gerr.Errors, googleapi.ErrorItem{Reason: r})
	}
	return fmt.Errorf("call: %w", gerr)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		want  error
		fatal bool
	}{
		{"unauthorized", apiError(http.StatusUnauthorized), domain.ErrConnectorAuth, true},
		{"forbidden", apiError(http.StatusForbidden), domain.ErrConnectorAuth, true},
		{"quota 403 is not auth", apiError(http.StatusForbidden, "userRateLimitExceeded"), domain.ErrConnectorFetch, false},
		{"rate limited", apiError(http.StatusTooManyRequests), domain.ErrConnectorFetch, false},
		{"not found", apiError(http.StatusNotFound), domain.ErrConnectorFetch, false},
		{"server error", apiError(http.StatusInternalServerError), domain.ErrConnectorFetch, false},
		{"refresh rejected", &oauth2.RetrieveError{ErrorCode: "invalid_grant"}, domain.ErrConnectorAuth, true},
		{"plain error", errors.New("boom"), domain.ErrConnectorFetch, false},
		{"cancelled", context.Canceled, context.Canceled, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Equal(t, tt.fatal, domain.IsFatal(got))
		})
	}

	assert.NoError(t, Classify(nil))
}

func TestClassifyItem(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		want  error
		fatal bool
	}{
		{"export too large", apiError(http.StatusForbidden, "exportSizeLimitExceeded"), domain.ErrConnectorFetch, false},
		{"cannot export", apiError(http.StatusForbidden, "cannotExportFile"), domain.ErrConnectorFetch, false},
		{"download disabled", apiError(http.StatusForbidden, "cannotDownloadFile"), domain.ErrConnectorFetch, false},
		{"quota", apiError(http.StatusForbidden, "rateLimitExceeded"), domain.ErrConnectorFetch, false},
		{"unauthorized", apiError(http.StatusUnauthorized), domain.ErrConnectorAuth, true},
		{"refresh rejected", &oauth2.RetrieveError{ErrorCode: "invalid_grant"}, domain.ErrConnectorAuth, true},
		{"cancelled", context.Canceled, context.Canceled, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyItem(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Equal(t, tt.fatal, domain.IsFatal(got))
		})
	}

	assert.NoError(t, ClassifyItem(nil))
}

func TestPredicates(t *testing.T) {
	assert.True(t, IsRateLimited(apiError(http.StatusTooManyRequests)))
	assert.True(t, IsRateLimited(apiError(http.StatusForbidden, "rateLimitExceeded")))
	assert.False(t, IsRateLimited(apiError(http.StatusForbidden)))
	assert.True(t, IsNotFound(apiError(http.StatusNotFound)))
	assert.False(t, IsNotFound(errors.New("x")))
}

func TestRetryAfter(t *testing.T) {
	gerr := &googleapi.Error{Code: http.StatusTooManyRequests, Header: http.Header{}}
	gerr.Header.Set("Retry-After", "7")

	assert.Equal(t, 7*time.Second, retryAfter(gerr))
	assert.Equal(t, time.Duration(0), retryAfter(apiError(http.StatusTooManyRequests)))
	assert.Equal(t, time.Duration(0), retryAfter(errors.New("x")))
}
