package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// previewLength bounds chunk text in ListChunks.
const previewLength = 200

const metaEmbeddingDim = "embedding_dim"

// chunkStore implements driven.ChunkStore.
type chunkStore struct {
	store *Store
}

var _ driven.ChunkStore = (*chunkStore)(nil)

// UpsertDocument inserts or updates a document by (integration, external id).
func (s *chunkStore) UpsertDocument(ctx context.Context, doc *domain.Document) (string, error) {
	if doc.IntegrationID == "" || doc.ExternalID == "" {
		return "", fmt.Errorf("%w: document needs integration and external id", domain.ErrInvalidInput)
	}
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.LastSyncedAt = time.Now().UTC()

	var id string
	err := s.store.db.QueryRowContext(ctx, `
		INSERT INTO documents (id, integration_id, external_id, owner, display_name,
			content_type, origin_url, created_at, modified_at, last_synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(integration_id, external_id) DO UPDATE SET
			owner = excluded.owner,
			display_name = excluded.display_name,
			content_type = excluded.content_type,
			origin_url = excluded.origin_url,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at,
			last_synced_at = excluded.last_synced_at
		RETURNING id
	`, doc.ID, doc.IntegrationID, doc.ExternalID, doc.Owner, doc.DisplayName,
		doc.ContentType, doc.OriginURL, nullTime(doc.CreatedAt), nullTime(doc.ModifiedAt),
		doc.LastSyncedAt).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upserting document: %w", err)
	}

	doc.ID = id
	return id, nil
}

// ReplaceChunks deletes and re-inserts a document's chunks in one transaction.
func (s *chunkStore) ReplaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	if err := s.replaceChunks(ctx, documentID, chunks); err != nil {
		return fmt.Errorf("%w: document %s: %w", domain.ErrStoreWrite, documentID, err)
	}
	return nil
}

func (s *chunkStore) replaceChunks(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	for i := range chunks {
		if strings.TrimSpace(chunks[i].Text) == "" {
			return fmt.Errorf("%w: chunk %d is empty", domain.ErrInvalidInput, i)
		}
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := checkDimension(ctx, tx, chunks); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (document_id, position, chunk_text, embedding, is_sentinel, added_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range chunks {
		c := &chunks[i]
		res, err := stmt.ExecContext(ctx, documentID, c.Position, c.Text,
			encodeVector(c.Embedding), boolToInt(c.IsSentinel()), now)
		if err != nil {
			return fmt.Errorf("inserting chunk %d: %w", c.Position, err)
		}
		if id, err := res.LastInsertId(); err == nil {
			c.ID = id
		}
		c.DocumentID = documentID
		c.AddedAt = now
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// checkDimension pins the store-wide embedding dimension on first write and
// rejects chunk sets that disagree with it.
func checkDimension(ctx context.Context, tx *sql.Tx, chunks []domain.Chunk) error {
	dim := 0
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			continue
		}
		if dim == 0 {
			dim = len(c.Embedding)
		} else if len(c.Embedding) != dim {
			return fmt.Errorf("%w: mixed embedding dimensions in one document", domain.ErrInvalidInput)
		}
	}
	if dim == 0 {
		return nil
	}

	var stored string
	err := tx.QueryRowContext(ctx, "SELECT value FROM store_meta WHERE key = ?", metaEmbeddingDim).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, "INSERT INTO store_meta (key, value) VALUES (?, ?)",
			metaEmbeddingDim, strconv.Itoa(dim))
		if err != nil {
			return fmt.Errorf("recording embedding dimension: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading embedding dimension: %w", err)
	}

	if stored != strconv.Itoa(dim) {
		return fmt.Errorf("%w: embedding dimension %d does not match index dimension %s (run `inkling reset` after changing embedders)",
			domain.ErrInvalidInput, dim, stored)
	}
	return nil
}

// LexicalQuery ranks chunks with FTS5 bm25. bm25 is lower-is-better, so the
// score is negated.
func (s *chunkStore) LexicalQuery(ctx context.Context, text string, limit int) ([]domain.Candidate, error) {
	match := ftsQuery(text)
	if match == "" || limit <= 0 {
		return nil, nil
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, bm25(chunks_fts) AS rank
		FROM chunks_fts
		JOIN chunks c ON c.id = chunks_fts.rowid
		WHERE chunks_fts MATCH ?
		ORDER BY rank, c.id
		LIMIT ?
	`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("lexical query: %w", err)
	}
	defer rows.Close()

	var out []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		var rank float64
		if err := rows.Scan(&c.ChunkID, &c.DocumentID, &rank); err != nil {
			return nil, fmt.Errorf("scanning lexical hit: %w", err)
		}
		c.Score = -rank
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating lexical hits: %w", err)
	}
	return out, nil
}

// ftsQuery turns free text into an FTS5 OR-query of quoted terms, so user
// input can never be parsed as FTS5 syntax.
func ftsQuery(text string) string {
	terms := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if len(terms) == 0 {
		return ""
	}
	seen := make(map[string]bool, len(terms))
	quoted := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(t)
		if seen[t] {
			continue
		}
		seen[t] = true
		quoted = append(quoted, `"`+t+`"`)
	}
	return strings.Join(quoted, " OR ")
}

// FetchAllVectors returns every chunk vector, including sentinels.
func (s *chunkStore) FetchAllVectors(ctx context.Context) ([]domain.StoredVector, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT id, document_id, embedding FROM chunks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("fetching vectors: %w", err)
	}
	defer rows.Close()

	var out []domain.StoredVector
	for rows.Next() {
		var v domain.StoredVector
		var blob []byte
		if err := rows.Scan(&v.ChunkID, &v.DocumentID, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		v.Vector = decodeVector(blob)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vectors: %w", err)
	}
	return out, nil
}

// ResolveChunks loads chunk text and document display fields.
func (s *chunkStore) ResolveChunks(ctx context.Context, ids []int64) (map[int64]domain.QueryResult, error) {
	out := make(map[int64]domain.QueryResult, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	//nolint:gosec // placeholders only
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, c.document_id, c.chunk_text, d.display_name, d.origin_url,
			d.created_at, d.modified_at
		FROM chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE c.id IN (`+placeholders(len(ids))+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("resolving chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r domain.QueryResult
		var created, modified sql.NullTime
		if err := rows.Scan(&r.ChunkID, &r.DocumentID, &r.ChunkText, &r.DocumentName,
			&r.OriginURL, &created, &modified); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		switch {
		case modified.Valid:
			r.Timestamp = modified.Time
		case created.Valid:
			r.Timestamp = created.Time
		}
		out[r.ChunkID] = r
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return out, nil
}

// GetChunks returns a document's chunks ordered by position.
func (s *chunkStore) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, document_id, position, chunk_text, embedding, added_at
		FROM chunks WHERE document_id = ? ORDER BY position, id
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Position, &c.Text, &blob, &c.AddedAt); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		c.Embedding = decodeVector(blob)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return out, nil
}

// DeleteDocument removes a document; chunks follow by cascade.
func (s *chunkStore) DeleteDocument(ctx context.Context, documentID string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", documentID)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListDocumentKeys maps external id to document id for an integration.
func (s *chunkStore) ListDocumentKeys(ctx context.Context, integrationID string) (map[string]string, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT external_id, id FROM documents WHERE integration_id = ?", integrationID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]string)
	for rows.Next() {
		var ext, id string
		if err := rows.Scan(&ext, &id); err != nil {
			return nil, fmt.Errorf("scanning document key: %w", err)
		}
		keys[ext] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return keys, nil
}

// Stats counts documents, chunks and sentinel chunks.
func (s *chunkStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	var st domain.StoreStats
	err := s.store.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM documents),
			(SELECT COUNT(*) FROM chunks),
			(SELECT COUNT(*) FROM chunks WHERE is_sentinel = 1)
	`).Scan(&st.Documents, &st.Chunks, &st.SentinelChunks)
	if err != nil {
		return st, fmt.Errorf("reading stats: %w", err)
	}
	return st, nil
}

// ListChunks previews up to limit chunks in insertion order.
func (s *chunkStore) ListChunks(ctx context.Context, limit int) ([]domain.ChunkPreview, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT c.id, d.display_name, c.chunk_text
		FROM chunks c JOIN documents d ON d.id = c.document_id
		ORDER BY c.id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing chunks: %w", err)
	}
	defer rows.Close()

	var out []domain.ChunkPreview
	for rows.Next() {
		var p domain.ChunkPreview
		if err := rows.Scan(&p.ID, &p.DocumentName, &p.Text); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		p.Text = truncate(p.Text, previewLength)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
