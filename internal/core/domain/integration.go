package domain

import (
	"fmt"
	"time"
)

// Provider names a supported integration kind.
type Provider string

const (
	ProviderFilesystem Provider = "filesystem"
	ProviderGmail      Provider = "gmail"
	ProviderDrive      Provider = "gdrive"
	ProviderSlack      Provider = "slack"
)

// Providers lists every supported provider.
func Providers() []Provider {
	return []Provider{ProviderFilesystem, ProviderGmail, ProviderDrive, ProviderSlack}
}

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	for _, p := range Providers() {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, s)
}

// OAuthToken holds OAuth2 credentials for a connected integration.
type OAuthToken struct {
	AccessToken string

	// RefreshToken is absent for providers that issue non-expiring tokens.
	RefreshToken *string

	TokenType string

	// Expiry is zero when the token does not expire.
	Expiry time.Time
}

// IsExpired reports whether the access token is past its expiry.
func (t *OAuthToken) IsExpired() bool {
	if t == nil || t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}

// Integration is a connected source owned by a user.
// Identity is (Owner, Provider).
type Integration struct {
	ID       string
	Owner    string
	Provider Provider

	// Account is the provider-side account label (email, workspace, root path).
	Account string

	// Config holds provider settings such as the filesystem root.
	Config map[string]string

	// Token is nil for providers without OAuth.
	Token *OAuthToken

	SyncStatus   SyncStatus
	LastError    string
	LastSyncedAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
