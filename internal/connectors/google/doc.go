// Package google provides shared infrastructure for the Gmail and Drive
// connectors:
//   - OAuth consent, code exchange and token refresh against Google's endpoint
//   - A token source that persists refreshed tokens
//   - API service factories
//   - Mapping of Google API errors onto the connector error taxonomy
//   - Rate limiting with backoff on 429 responses
//
// # OAuth2 Scopes
//
//   - https://www.googleapis.com/auth/userinfo.email (account label)
//   - https://www.googleapis.com/auth/gmail.readonly
//   - https://www.googleapis.com/auth/drive.readonly
package google
