package google

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// ScopeUserEmail reads the account's email address for the account label.
const ScopeUserEmail = "https://www.googleapis.com/auth/userinfo.email"

// OAuth handles consent, code exchange and token refresh for one Google
// product.
type OAuth struct {
	app    domain.OAuthAppConfig
	config *oauth2.Config

	// UserInfoURL is overridable for tests.
	UserInfoURL string
}

// NewOAuth builds the OAuth client for app with the given product scopes.
func NewOAuth(app domain.OAuthAppConfig, scopes ...string) *OAuth {
	return &OAuth{
		app: app,
		config: &oauth2.Config{
			ClientID:     app.ClientID,
			ClientSecret: app.ClientSecret,
			RedirectURL:  app.RedirectURL,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       append([]string{ScopeUserEmail}, scopes...),
		},
		UserInfoURL: userInfoURL,
	}
}

// WithEndpoint replaces the authorization server, for tests.
func (o *OAuth) WithEndpoint(ep oauth2.Endpoint) *OAuth {
	o.config.Endpoint = ep
	return o
}

func (o *OAuth) configured() error {
	if !o.app.Configured() {
		return fmt.Errorf("%w: set client_id and client_secret in the [google] config section", domain.ErrInvalidInput)
	}
	return nil
}

// AuthURL returns the consent URL. Offline access with forced consent
// makes Google issue a refresh token every time.
func (o *OAuth) AuthURL(state string) (string, error) {
	if err := o.configured(); err != nil {
		return "", err
	}
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange trades a code for a token and labels the account by its email.
func (o *OAuth) Exchange(ctx context.Context, code string) (*domain.OAuthToken, string, error) {
	if err := o.configured(); err != nil {
		return nil, "", err
	}
	tok, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%w: exchange code: %w", domain.ErrConnectorAuth, err)
	}

	account := ""
	info, err := GetUserInfo(ctx, o.config.Client(ctx, tok), o.UserInfoURL)
	if err == nil {
		account = info.Email
	}

	stored := FromOAuth2(tok)
	return &stored, account, nil
}

// TokenSource returns a refreshing token source for an integration that
// persists refreshed tokens through saver.
func (o *OAuth) TokenSource(
	ctx context.Context, integration domain.Integration, saver driven.TokenSaver,
) (oauth2.TokenSource, error) {
	if integration.Token == nil {
		return nil, fmt.Errorf("%w: integration %s has no token, reconnect it", domain.ErrConnectorAuth, integration.ID)
	}
	base := o.config.TokenSource(ctx, ToOAuth2(integration.Token))
	return NewSavingTokenSource(ctx, base, saver, integration.ID, integration.Token.AccessToken), nil
}
