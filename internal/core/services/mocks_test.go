package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockChunkStore is an in-memory driven.ChunkStore.
type mockChunkStore struct {
	mu        sync.Mutex
	nextChunk int64
	docs      map[string]domain.Document // by ID
	chunks    map[string][]domain.Chunk  // by document ID

	lexical      []domain.Candidate
	lexicalErr   error
	lexicalLimit int
	replaceErr   map[string]error   // by external ID
	gone         map[int64]struct{} // chunk IDs ResolveChunks no longer finds
}

func newMockChunkStore() *mockChunkStore {
	return &mockChunkStore{
		docs:       make(map[string]domain.Document),
		chunks:     make(map[string][]domain.Chunk),
		replaceErr: make(map[string]error),
	}
}

func (m *mockChunkStore) UpsertDocument(_ context.Context, doc *domain.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, d := range m.docs {
		if d.IntegrationID == doc.IntegrationID && d.ExternalID == doc.ExternalID {
			doc.ID = id
			m.docs[id] = *doc
			return id, nil
		}
	}
	doc.ID = fmt.Sprintf("doc-%d", len(m.docs)+1)
	m.docs[doc.ID] = *doc
	return doc.ID, nil
}

func (m *mockChunkStore) ReplaceChunks(_ context.Context, documentID string, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.replaceErr[m.docs[documentID].ExternalID]; err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreWrite, err)
	}
	stored := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		m.nextChunk++
		c.ID = m.nextChunk
		stored[i] = c
	}
	m.chunks[documentID] = stored
	return nil
}

func (m *mockChunkStore) LexicalQuery(_ context.Context, _ string, limit int) ([]domain.Candidate, error) {
	m.lexicalLimit = limit
	if m.lexicalErr != nil {
		return nil, m.lexicalErr
	}
	if limit < len(m.lexical) {
		return m.lexical[:limit], nil
	}
	return m.lexical, nil
}

func (m *mockChunkStore) FetchAllVectors(context.Context) ([]domain.StoredVector, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StoredVector
	for docID, cs := range m.chunks {
		for _, c := range cs {
			out = append(out, domain.StoredVector{ChunkID: c.ID, DocumentID: docID, Vector: c.Embedding})
		}
	}
	return out, nil
}

func (m *mockChunkStore) ResolveChunks(_ context.Context, ids []int64) (map[int64]domain.QueryResult, error) {
	out := make(map[int64]domain.QueryResult, len(ids))
	for _, id := range ids {
		if _, ok := m.gone[id]; ok {
			continue
		}
		out[id] = domain.QueryResult{
			ChunkID:      id,
			DocumentName: fmt.Sprintf("doc for %d", id),
			ChunkText:    fmt.Sprintf("chunk %d", id),
		}
	}
	return out, nil
}

func (m *mockChunkStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chunks[documentID], nil
}

func (m *mockChunkStore) DeleteDocument(_ context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[documentID]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, documentID)
	delete(m.chunks, documentID)
	return nil
}

func (m *mockChunkStore) ListDocumentKeys(_ context.Context, integrationID string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string)
	for id, d := range m.docs {
		if d.IntegrationID == integrationID {
			out[d.ExternalID] = id
		}
	}
	return out, nil
}

func (m *mockChunkStore) Stats(context.Context) (domain.StoreStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := domain.StoreStats{Documents: len(m.docs)}
	for _, cs := range m.chunks {
		for i := range cs {
			st.Chunks++
			if cs[i].IsSentinel() {
				st.SentinelChunks++
			}
		}
	}
	return st, nil
}

func (m *mockChunkStore) ListChunks(_ context.Context, limit int) ([]domain.ChunkPreview, error) {
	return make([]domain.ChunkPreview, limit), nil
}

// docByExternal returns the stored document with externalID.
func (m *mockChunkStore) docByExternal(externalID string) (domain.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.ExternalID == externalID {
			return d, true
		}
	}
	return domain.Document{}, false
}

// mockIntegrationStore records status transitions and enforces the state machine.
type mockIntegrationStore struct {
	mu           sync.Mutex
	integrations map[string]*domain.Integration
	transitions  []domain.SyncStatus
	lastErr      string
}

func newMockIntegrationStore(list ...domain.Integration) *mockIntegrationStore {
	m := &mockIntegrationStore{integrations: make(map[string]*domain.Integration)}
	for i := range list {
		in := list[i]
		if in.SyncStatus == "" {
			in.SyncStatus = domain.SyncIdle
		}
		m.integrations[in.ID] = &in
	}
	return m
}

func (m *mockIntegrationStore) SaveToken(_ context.Context, id string, token domain.OAuthToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.integrations[id]
	if !ok {
		return domain.ErrNotFound
	}
	in.Token = &token
	return nil
}

func (m *mockIntegrationStore) Save(_ context.Context, in *domain.Integration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.integrations {
		if existing.Owner == in.Owner && existing.Provider == in.Provider {
			in.ID = existing.ID
			in.SyncStatus = existing.SyncStatus
			cp := *in
			m.integrations[in.ID] = &cp
			return nil
		}
	}
	if in.ID == "" {
		in.ID = fmt.Sprintf("int-%d", len(m.integrations)+1)
	}
	if in.SyncStatus == "" {
		in.SyncStatus = domain.SyncIdle
	}
	cp := *in
	m.integrations[in.ID] = &cp
	return nil
}

func (m *mockIntegrationStore) Get(_ context.Context, id string) (*domain.Integration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.integrations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *in
	return &cp, nil
}

func (m *mockIntegrationStore) GetByOwner(
	_ context.Context, owner string, provider domain.Provider,
) (*domain.Integration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, in := range m.integrations {
		if in.Owner == owner && in.Provider == provider {
			cp := *in
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockIntegrationStore) ListByOwner(_ context.Context, owner string) ([]domain.Integration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Integration
	for _, in := range m.integrations {
		if in.Owner == owner {
			out = append(out, *in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockIntegrationStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.integrations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.integrations, id)
	return nil
}

func (m *mockIntegrationStore) SetSyncStatus(
	_ context.Context, id string, status domain.SyncStatus, lastErr string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.integrations[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !in.SyncStatus.CanTransition(status) {
		return domain.ErrInvalidTransition
	}
	in.SyncStatus = status
	in.LastError = lastErr
	m.transitions = append(m.transitions, status)
	m.lastErr = lastErr
	return nil
}

func (m *mockIntegrationStore) status(id string) domain.SyncStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.integrations[id].SyncStatus
}

// mockConnector serves fixed items. Content is the item name unless overridden.
type mockConnector struct {
	items    []domain.ItemHandle
	listErr  error
	fetchErr map[string]error
	content  map[string]string
	partial  bool
}

func (m *mockConnector) Provider() domain.Provider { return domain.ProviderFilesystem }

func (m *mockConnector) ListItems(context.Context) ([]domain.ItemHandle, error) {
	return m.items, m.listErr
}

func (m *mockConnector) FetchContent(_ context.Context, item domain.ItemHandle) (*domain.RawDocument, error) {
	if err := m.fetchErr[item.ExternalID]; err != nil {
		return nil, err
	}
	text, ok := m.content[item.ExternalID]
	if !ok {
		text = "content of " + item.Name
	}
	return &domain.RawDocument{Item: item, MIMEType: "text/plain", Content: []byte(text)}, nil
}

func (m *mockConnector) Close() error { return nil }

type partialConnector struct{ *mockConnector }

func (p partialConnector) Complete() bool { return !p.partial }

// mockFactory hands out a single connector and provider.
type mockFactory struct {
	conn      driven.Connector
	createErr error
	provider  *mockProvider
}

func (m *mockFactory) Provider(p domain.Provider) (driven.ConnectorProvider, error) {
	if m.provider == nil || m.provider.name != p {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, p)
	}
	return m.provider, nil
}

func (m *mockFactory) Create(context.Context, domain.Integration) (driven.Connector, error) {
	return m.conn, m.createErr
}

type mockProvider struct {
	name     domain.Provider
	oauth    bool
	token    *domain.OAuthToken
	account  string
	exchange error
}

func (p *mockProvider) Provider() domain.Provider { return p.name }
func (p *mockProvider) RequiresOAuth() bool       { return p.oauth }

func (p *mockProvider) AuthURL(state string) (string, error) {
	return "https://auth.example/consent?state=" + state, nil
}

func (p *mockProvider) ExchangeCode(context.Context, string) (*domain.OAuthToken, string, error) {
	return p.token, p.account, p.exchange
}

func (p *mockProvider) New(context.Context, domain.Integration, driven.TokenSaver) (driven.Connector, error) {
	return nil, errors.New("not used")
}

// lineNormaliser emits one document per payload; payload lines starting
// with "#" become extra documents named "<item>_<n>".
type lineNormaliser struct {
	fail map[string]bool
}

func (n *lineNormaliser) Register(driven.Normaliser) {}

func (n *lineNormaliser) Get(string) (driven.Normaliser, bool) { return nil, false }

func (n *lineNormaliser) Normalise(
	_ context.Context, raw *domain.RawDocument,
) ([]domain.NormalisedDocument, error) {
	if n.fail[raw.Item.ExternalID] {
		return nil, fmt.Errorf("%w: bad payload", domain.ErrConversion)
	}
	text := string(raw.Content)
	if !strings.HasPrefix(text, "#") {
		return []domain.NormalisedDocument{{
			Document: domain.Document{ExternalID: raw.Item.ExternalID, DisplayName: raw.Item.Name},
			Text:     text,
			Policy:   domain.SegmentSemantic,
		}}, nil
	}
	var docs []domain.NormalisedDocument
	for i, part := range strings.Split(strings.TrimPrefix(text, "#"), "#") {
		docs = append(docs, domain.NormalisedDocument{
			Document: domain.Document{ExternalID: fmt.Sprintf("%s_%d", raw.Item.ExternalID, i)},
			Text:     part,
			Policy:   domain.SegmentSemantic,
		})
	}
	return docs, nil
}

// wordSegmenter emits one chunk per whitespace-separated word.
type wordSegmenter struct{}

func (wordSegmenter) Name() string                 { return "words" }
func (wordSegmenter) Segment(text string) []string { return strings.Fields(text) }

type trimCleaner struct{}

func (trimCleaner) Clean(text string) string { return strings.TrimSpace(text) }

// mockEmbedding returns a one-hot vector per text. Texts listed in failOn
// fail both batch and single calls; batchErr fails only batches.
type mockEmbedding struct {
	mu         sync.Mutex
	dims       int
	failOn     map[string]bool
	batchErr   error
	embedErr   error
	batchCalls int
	embedCalls int
}

func (m *mockEmbedding) vector(text string) []float32 {
	v := make([]float32, m.dims)
	v[len(text)%m.dims] = 1
	return v
}

func (m *mockEmbedding) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.embedCalls++
	m.mu.Unlock()
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failOn[text] {
		return nil, errors.New("embed failed")
	}
	return m.vector(text), nil
}

func (m *mockEmbedding) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if m.failOn[t] {
			return nil, errors.New("batch failed")
		}
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int            { return m.dims }
func (m *mockEmbedding) ModelName() string          { return "mock" }
func (m *mockEmbedding) Ping(context.Context) error { return nil }
func (m *mockEmbedding) Close() error               { return nil }

// mockVectorIndex returns fixed hits.
type mockVectorIndex struct {
	hits []driven.VectorHit
	err  error
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.err != nil {
		return nil, m.err
	}
	if k < len(m.hits) {
		return m.hits[:k], nil
	}
	return m.hits, nil
}
