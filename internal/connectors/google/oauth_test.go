package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/inkling/internal/core/domain"
)

type recordingSaver struct {
	mu     sync.Mutex
	tokens []domain.OAuthToken
}

func (s *recordingSaver) SaveToken(_ context.Context, _ string, token domain.OAuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	return nil
}

func newAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		switch r.Form.Get("grant_type") {
		case "authorization_code":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "access-1", "refresh_token": "refresh-1", "token_type": "Bearer", "expires_in": 3600,
			})
		case "refresh_token":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token": "access-2", "token_type": "Bearer", "expires_in": 3600,
			})
		default:
			http.Error(w, `{"error":"unsupported_grant_type"}`, http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(UserInfo{Email: "ada@example.com", VerifiedEmail: true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testOAuth(srv *httptest.Server) *OAuth {
	o := NewOAuth(domain.OAuthAppConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://localhost/cb"}, "scope-x")
	o.UserInfoURL = srv.URL + "/userinfo"
	return o.WithEndpoint(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"})
}

func TestOAuth_Exchange(t *testing.T) {
	o := testOAuth(newAuthServer(t))

	tok, account, err := o.Exchange(context.Background(), "code-1")

	require.NoError(t, err)
	assert.Equal(t, "access-1", tok.AccessToken)
	require.NotNil(t, tok.RefreshToken)
	assert.Equal(t, "refresh-1", *tok.RefreshToken)
	assert.False(t, tok.Expiry.IsZero())
	assert.Equal(t, "ada@example.com", account)
}

func TestOAuth_AuthURL(t *testing.T) {
	o := testOAuth(newAuthServer(t))

	url, err := o.AuthURL("xyz")

	require.NoError(t, err)
	assert.Contains(t, url, "state=xyz")
	assert.Contains(t, url, "prompt=consent")
	assert.Contains(t, url, "scope-x")
}

func TestOAuth_TokenSourceRefreshesAndSaves(t *testing.T) {
	o := testOAuth(newAuthServer(t))
	refresh := "refresh-1"
	integration := domain.Integration{
		ID: "i1",
		Token: &domain.OAuthToken{
			AccessToken:  "access-1",
			RefreshToken: &refresh,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(-time.Minute),
		},
	}
	saver := &recordingSaver{}

	ts, err := o.TokenSource(context.Background(), integration, saver)
	require.NoError(t, err)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "access-2", tok.AccessToken)

	_, err = ts.Token()
	require.NoError(t, err)

	require.Len(t, saver.tokens, 1)
	assert.Equal(t, "access-2", saver.tokens[0].AccessToken)
	require.NotNil(t, saver.tokens[0].RefreshToken)
	assert.Equal(t, "refresh-1", *saver.tokens[0].RefreshToken)
}

func TestOAuth_TokenSourceWithoutToken(t *testing.T) {
	o := testOAuth(newAuthServer(t))

	_, err := o.TokenSource(context.Background(), domain.Integration{ID: "i1"}, nil)

	assert.ErrorIs(t, err, domain.ErrConnectorAuth)
}

func TestTokenConversion(t *testing.T) {
	expiry := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	stored := FromOAuth2(&oauth2.Token{AccessToken: "a", TokenType: "Bearer", Expiry: expiry})
	assert.Nil(t, stored.RefreshToken)

	back := ToOAuth2(&stored)
	assert.Equal(t, "a", back.AccessToken)
	assert.Equal(t, "", back.RefreshToken)
	assert.Equal(t, expiry, back.Expiry)
}
