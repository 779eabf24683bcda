package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// integrationStore implements driven.IntegrationStore.
type integrationStore struct {
	store *Store
}

var _ driven.IntegrationStore = (*integrationStore)(nil)

const integrationColumns = `id, owner, provider, account, config, access_token, refresh_token,
	token_type, token_expiry, sync_status, last_error, last_synced_at, created_at, updated_at`

// Save upserts by (owner, provider). An existing row keeps its ID and sync status.
func (s *integrationStore) Save(ctx context.Context, in *domain.Integration) error {
	if in.Owner == "" || in.Provider == "" {
		return fmt.Errorf("%w: integration needs owner and provider", domain.ErrInvalidInput)
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.SyncStatus == "" {
		in.SyncStatus = domain.SyncIdle
	}
	now := time.Now().UTC()

	configJSON, err := json.Marshal(in.Config)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	access, refresh, tokenType, expiry := tokenColumns(in.Token)

	err = s.store.db.QueryRowContext(ctx, `
		INSERT INTO integrations (id, owner, provider, account, config, access_token,
			refresh_token, token_type, token_expiry, sync_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner, provider) DO UPDATE SET
			account = excluded.account,
			config = excluded.config,
			access_token = excluded.access_token,
			refresh_token = COALESCE(excluded.refresh_token, integrations.refresh_token),
			token_type = excluded.token_type,
			token_expiry = excluded.token_expiry,
			updated_at = excluded.updated_at
		RETURNING id, sync_status, created_at
	`, in.ID, in.Owner, string(in.Provider), in.Account, string(configJSON),
		access, refresh, tokenType, expiry, string(in.SyncStatus), now, now,
	).Scan(&in.ID, &in.SyncStatus, &in.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving integration: %w", err)
	}
	in.UpdatedAt = now
	return nil
}

// Get returns an integration by ID.
func (s *integrationStore) Get(ctx context.Context, id string) (*domain.Integration, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+integrationColumns+" FROM integrations WHERE id = ?", id)
	return scanIntegration(row)
}

// GetByOwner returns the owner's integration for a provider.
func (s *integrationStore) GetByOwner(
	ctx context.Context, owner string, provider domain.Provider,
) (*domain.Integration, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+integrationColumns+" FROM integrations WHERE owner = ? AND provider = ?",
		owner, string(provider))
	return scanIntegration(row)
}

// ListByOwner lists an owner's integrations ordered by provider.
func (s *integrationStore) ListByOwner(ctx context.Context, owner string) ([]domain.Integration, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+integrationColumns+" FROM integrations WHERE owner = ? ORDER BY provider", owner)
	if err != nil {
		return nil, fmt.Errorf("listing integrations: %w", err)
	}
	defer rows.Close()

	var out []domain.Integration
	for rows.Next() {
		in, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating integrations: %w", err)
	}
	return out, nil
}

// Delete removes an integration; documents and chunks follow by cascade.
func (s *integrationStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM integrations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting integration: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetSyncStatus applies a checked state transition.
func (s *integrationStore) SetSyncStatus(
	ctx context.Context, id string, status domain.SyncStatus, lastErr string,
) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var current string
	err = tx.QueryRowContext(ctx, "SELECT sync_status FROM integrations WHERE id = ?", id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading sync status: %w", err)
	}

	if !domain.SyncStatus(current).CanTransition(status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, status)
	}

	now := time.Now().UTC()
	switch status {
	case domain.SyncSuccess:
		_, err = tx.ExecContext(ctx, `
			UPDATE integrations SET sync_status = ?, last_error = '', last_synced_at = ?, updated_at = ?
			WHERE id = ?`, string(status), now, now, id)
	default:
		_, err = tx.ExecContext(ctx, `
			UPDATE integrations SET sync_status = ?, last_error = ?, updated_at = ?
			WHERE id = ?`, string(status), lastErr, now, id)
	}
	if err != nil {
		return fmt.Errorf("updating sync status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// InterruptedError is recorded on integrations whose pass never finished.
const InterruptedError = "interrupted"

// ResetInterrupted moves every integration still marked syncing to error.
// Call it once at startup, before any pass runs: a row left in syncing by a
// process that exited mid-pass would otherwise refuse every later pass.
func (s *Store) ResetInterrupted(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE integrations SET sync_status = ?, last_error = ?, updated_at = ?
		WHERE sync_status = ?`,
		string(domain.SyncError), InterruptedError, now, string(domain.SyncSyncing))
	if err != nil {
		return 0, fmt.Errorf("resetting interrupted syncs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// SaveToken stores a refreshed OAuth token.
func (s *integrationStore) SaveToken(ctx context.Context, id string, token domain.OAuthToken) error {
	access, refresh, tokenType, expiry := tokenColumns(&token)
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE integrations SET access_token = ?,
			refresh_token = COALESCE(?, refresh_token),
			token_type = ?, token_expiry = ?, updated_at = ?
		WHERE id = ?
	`, access, refresh, tokenType, expiry, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func tokenColumns(t *domain.OAuthToken) (access, refresh, tokenType sql.NullString, expiry sql.NullTime) {
	if t == nil {
		return
	}
	access = sql.NullString{String: t.AccessToken, Valid: true}
	if t.RefreshToken != nil {
		refresh = sql.NullString{String: *t.RefreshToken, Valid: true}
	}
	tokenType = sql.NullString{String: t.TokenType, Valid: t.TokenType != ""}
	expiry = nullTime(t.Expiry)
	return
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntegration(row rowScanner) (*domain.Integration, error) {
	var in domain.Integration
	var provider, status, configJSON string
	var access, refresh, tokenType sql.NullString
	var expiry, lastSynced sql.NullTime

	if err := row.Scan(&in.ID, &in.Owner, &provider, &in.Account, &configJSON,
		&access, &refresh, &tokenType, &expiry, &status, &in.LastError, &lastSynced,
		&in.CreatedAt, &in.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning integration: %w", err)
	}

	in.Provider = domain.Provider(provider)
	st, err := domain.ParseSyncStatus(status)
	if err != nil {
		return nil, fmt.Errorf("integration %s: %w", in.ID, err)
	}
	in.SyncStatus = st
	if lastSynced.Valid {
		in.LastSyncedAt = lastSynced.Time
	}
	if configJSON != "" && configJSON != "null" {
		if err := json.Unmarshal([]byte(configJSON), &in.Config); err != nil {
			return nil, fmt.Errorf("unmarshalling config: %w", err)
		}
	}
	if access.Valid {
		in.Token = &domain.OAuthToken{AccessToken: access.String, TokenType: tokenType.String}
		if refresh.Valid {
			r := refresh.String
			in.Token.RefreshToken = &r
		}
		if expiry.Valid {
			in.Token.Expiry = expiry.Time
		}
	}
	return &in, nil
}
