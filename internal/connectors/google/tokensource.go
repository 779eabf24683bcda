package google

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/logger"
)

// ToOAuth2 converts a stored token for use with oauth2 clients.
func ToOAuth2(t *domain.OAuthToken) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expiry:      t.Expiry,
	}
	if t.RefreshToken != nil {
		tok.RefreshToken = *t.RefreshToken
	}
	return tok
}

// FromOAuth2 converts an oauth2 token for storage.
func FromOAuth2(t *oauth2.Token) domain.OAuthToken {
	out := domain.OAuthToken{
		AccessToken: t.AccessToken,
		TokenType:   t.TokenType,
		Expiry:      t.Expiry,
	}
	if t.RefreshToken != "" {
		refresh := t.RefreshToken
		out.RefreshToken = &refresh
	}
	return out
}

// savingTokenSource writes every newly issued access token back through a
// TokenSaver so the next pass starts from it.
type savingTokenSource struct {
	ctx           context.Context
	base          oauth2.TokenSource
	saver         driven.TokenSaver
	integrationID string

	mu   sync.Mutex
	last string
}

// NewSavingTokenSource wraps base. current is the access token already stored.
func NewSavingTokenSource(
	ctx context.Context, base oauth2.TokenSource, saver driven.TokenSaver, integrationID, current string,
) oauth2.TokenSource {
	return &savingTokenSource{
		ctx:           ctx,
		base:          base,
		saver:         saver,
		integrationID: integrationID,
		last:          current,
	}
}

// Token implements oauth2.TokenSource.
func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	changed := tok.AccessToken != s.last
	s.last = tok.AccessToken
	s.mu.Unlock()

	if changed && s.saver != nil {
		if err := s.saver.SaveToken(s.ctx, s.integrationID, FromOAuth2(tok)); err != nil {
			logger.Warn("Could not persist refreshed token for %s: %v", s.integrationID, err)
		} else {
			logger.Debug("Persisted refreshed token for %s", s.integrationID)
		}
	}
	return tok, nil
}
