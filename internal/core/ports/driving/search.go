package driving

import (
	"context"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

// SearchService answers free-text queries. Read-only and safe for
// unlimited concurrent use.
type SearchService interface {
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.QueryResult, error)
}
