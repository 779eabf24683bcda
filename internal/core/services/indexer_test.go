package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/logger"
)

type indexerFixture struct {
	store        *mockChunkStore
	integrations *mockIntegrationStore
	conn         *mockConnector
	factory      *mockFactory
	normaliser   *lineNormaliser
	embedding    *mockEmbedding
	integration  domain.Integration
	cfg          domain.IndexingConfig
}

func newIndexerFixture(items ...string) *indexerFixture {
	integration := domain.Integration{ID: "int-1", Owner: "u1", Provider: domain.ProviderFilesystem}
	conn := &mockConnector{content: map[string]string{}, fetchErr: map[string]error{}}
	for _, id := range items {
		conn.items = append(conn.items, domain.ItemHandle{ExternalID: id, Name: id})
	}
	return &indexerFixture{
		store:        newMockChunkStore(),
		integrations: newMockIntegrationStore(integration),
		conn:         conn,
		factory:      &mockFactory{conn: conn},
		normaliser:   &lineNormaliser{fail: map[string]bool{}},
		embedding:    &mockEmbedding{dims: 8, failOn: map[string]bool{}},
		integration:  integration,
		cfg:          domain.IndexingConfig{SentinelThreshold: 2000, Workers: 1},
	}
}

func (f *indexerFixture) indexer() *Indexer {
	segmenters := map[domain.SegmentPolicy]driven.Segmenter{domain.SegmentSemantic: wordSegmenter{}}
	return NewIndexer(f.integrations, f.store, f.factory, f.normaliser, segmenters, trimCleaner{}, f.embedding, f.cfg)
}

func (f *indexerFixture) run(t *testing.T) domain.PassReport {
	t.Helper()
	in, err := f.integrations.Get(context.Background(), f.integration.ID)
	require.NoError(t, err)
	return f.indexer().RunPass(context.Background(), *in)
}

func (f *indexerFixture) chunkTexts(t *testing.T, externalID string) []string {
	t.Helper()
	doc, ok := f.store.docByExternal(externalID)
	require.True(t, ok, "document %s not stored", externalID)
	chunks, err := f.store.GetChunks(context.Background(), doc.ID)
	require.NoError(t, err)
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}

func TestRunPass_Success(t *testing.T) {
	f := newIndexerFixture("a", "b")
	f.conn.content["a"] = "alpha beta"
	f.conn.content["b"] = "gamma"

	report := f.run(t)

	require.NoError(t, report.Err)
	assert.Equal(t, domain.SyncSuccess, report.Status)
	assert.Equal(t, 2, report.Listed)
	assert.Equal(t, 2, report.Indexed)
	assert.Equal(t, []domain.SyncStatus{domain.SyncSyncing, domain.SyncSuccess}, f.integrations.transitions)
	assert.Equal(t, []string{"alpha", "beta"}, f.chunkTexts(t, "a"))

	doc, _ := f.store.docByExternal("a")
	assert.Equal(t, "u1", doc.Owner)
	assert.Equal(t, "int-1", doc.IntegrationID)

	stats, _ := f.store.Stats(context.Background())
	assert.Equal(t, 3, stats.Chunks)
	assert.Zero(t, stats.SentinelChunks)
	assert.Equal(t, 2, f.embedding.batchCalls, "one batch per document")
}

func TestRunPass_ReindexLeavesNoResidue(t *testing.T) {
	f := newIndexerFixture("a")
	f.conn.content["a"] = "one two three four"
	require.NoError(t, f.run(t).Err)

	f.conn.content["a"] = "five six"
	require.NoError(t, f.run(t).Err)

	assert.Equal(t, []string{"five", "six"}, f.chunkTexts(t, "a"))
	stats, _ := f.store.Stats(context.Background())
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 2, stats.Chunks)
}

func TestRunPass_LargeDocumentGetsSentinels(t *testing.T) {
	f := newIndexerFixture("big")
	words := make([]string, 2500)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	f.conn.content["big"] = strings.Join(words, " ")

	report := f.run(t)

	require.NoError(t, report.Err)
	stats, _ := f.store.Stats(context.Background())
	assert.Equal(t, 2500, stats.Chunks)
	assert.Equal(t, 2500, stats.SentinelChunks)
	assert.Zero(t, f.embedding.batchCalls)
	assert.Zero(t, f.embedding.embedCalls)
}

func TestRunPass_BatchFailureFallsBackPerItem(t *testing.T) {
	f := newIndexerFixture("a")
	f.conn.content["a"] = "good bad fine"
	f.embedding.failOn["bad"] = true

	report := f.run(t)

	require.NoError(t, report.Err)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 3, f.embedding.embedCalls)

	doc, _ := f.store.docByExternal("a")
	chunks, _ := f.store.GetChunks(context.Background(), doc.ID)
	require.Len(t, chunks, 3)
	assert.False(t, chunks[0].IsSentinel())
	assert.True(t, chunks[1].IsSentinel(), "the failing item alone gets a sentinel")
	assert.False(t, chunks[2].IsSentinel())
}

func TestRunPass_WrongWidthVectorBecomesSentinel(t *testing.T) {
	assert.Equal(t, []float32{0, 0, 0}, fitVector([]float32{1, 2}, 3))
	assert.Equal(t, []float32{1, 2}, fitVector([]float32{1, 2}, 2))
}

func TestRunPass_RecoverableFailuresSkipItems(t *testing.T) {
	f := newIndexerFixture("a", "b", "c")
	f.conn.fetchErr["b"] = fmt.Errorf("%w: 500", domain.ErrConnectorFetch)
	f.normaliser.fail["c"] = true

	report := f.run(t)

	require.NoError(t, report.Err)
	assert.Equal(t, domain.SyncSuccess, report.Status)
	assert.Equal(t, 1, report.Indexed)
	assert.Equal(t, 2, report.Skipped)
}

func TestRunPass_SkipsAreLoggedWithoutVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(false)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	f := newIndexerFixture("a", "b")
	f.conn.fetchErr["b"] = fmt.Errorf("%w: 500", domain.ErrConnectorFetch)

	report := f.run(t)

	require.NoError(t, report.Err)
	assert.Contains(t, buf.String(), "[WARN] Skipping b:")
	assert.NotContains(t, buf.String(), "Skipping a")
}

func TestRunPass_ListAuthFailureIsFatal(t *testing.T) {
	f := newIndexerFixture()
	f.conn.listErr = fmt.Errorf("%w: token revoked", domain.ErrConnectorAuth)

	report := f.run(t)

	require.Error(t, report.Err)
	assert.ErrorIs(t, report.Err, domain.ErrConnectorAuth)
	assert.Equal(t, domain.SyncError, report.Status)
	assert.Equal(t, domain.SyncError, f.integrations.status("int-1"))
	assert.Contains(t, f.integrations.lastErr, "token revoked")
}

func TestRunPass_FetchAuthFailureIsFatal(t *testing.T) {
	f := newIndexerFixture("a", "b")
	f.conn.fetchErr["a"] = fmt.Errorf("%w: 401", domain.ErrConnectorAuth)

	report := f.run(t)

	assert.ErrorIs(t, report.Err, domain.ErrConnectorAuth)
	assert.Equal(t, domain.SyncError, report.Status)
}

func TestRunPass_ConnectorCreationFailureIsFatal(t *testing.T) {
	f := newIndexerFixture()
	f.factory.createErr = errors.New("missing client id")

	report := f.run(t)

	assert.Error(t, report.Err)
	assert.Equal(t, domain.SyncError, f.integrations.status("int-1"))
}

func TestRunPass_CancelledContextRecordsError(t *testing.T) {
	f := newIndexerFixture("a")
	f.conn.fetchErr["a"] = context.Canceled
	in, _ := f.integrations.Get(context.Background(), "int-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := f.indexer().RunPass(ctx, *in)

	assert.ErrorIs(t, report.Err, context.Canceled)
	assert.Equal(t, domain.SyncError, f.integrations.status("int-1"))
}

func TestRunPass_StoreWriteFailureKeepsPreviousChunks(t *testing.T) {
	f := newIndexerFixture("a", "b")
	f.conn.content["a"] = "old text"
	require.NoError(t, f.run(t).Err)

	f.conn.content["a"] = "new text"
	f.store.replaceErr["a"] = errors.New("disk full")
	report := f.run(t)

	require.NoError(t, report.Err)
	assert.Equal(t, domain.SyncSuccess, report.Status)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, []string{"old", "text"}, f.chunkTexts(t, "a"))
}

func TestRunPass_EmptyTextIsNotAFailure(t *testing.T) {
	f := newIndexerFixture("blank")
	f.conn.content["blank"] = "   \n  "

	report := f.run(t)

	require.NoError(t, report.Err)
	assert.Equal(t, 1, report.Empty)
	assert.Zero(t, report.Skipped)
	_, stored := f.store.docByExternal("blank")
	assert.False(t, stored)
}

func TestRunPass_PrunesStaleDocuments(t *testing.T) {
	f := newIndexerFixture("a", "b")
	require.NoError(t, f.run(t).Err)

	f.conn.items = f.conn.items[:1]
	report := f.run(t)

	assert.Equal(t, 1, report.Pruned)
	_, ok := f.store.docByExternal("b")
	assert.False(t, ok)
}

func TestRunPass_FailedItemsAreNotPruned(t *testing.T) {
	f := newIndexerFixture("a", "chan")
	f.conn.content["chan"] = "#first session#second session"
	require.NoError(t, f.run(t).Err)
	_, ok := f.store.docByExternal("chan_1")
	require.True(t, ok)

	f.conn.fetchErr["a"] = fmt.Errorf("%w: timeout", domain.ErrConnectorFetch)
	f.conn.fetchErr["chan"] = fmt.Errorf("%w: timeout", domain.ErrConnectorFetch)
	report := f.run(t)

	assert.Zero(t, report.Pruned)
	for _, ext := range []string{"a", "chan_0", "chan_1"} {
		_, ok := f.store.docByExternal(ext)
		assert.True(t, ok, "%s kept", ext)
	}
}

func TestRunPass_PartialListingSkipsPrune(t *testing.T) {
	f := newIndexerFixture("a", "b")
	require.NoError(t, f.run(t).Err)

	f.conn.items = f.conn.items[:1]
	f.factory.conn = partialConnector{mockConnector: f.conn}
	f.conn.partial = true
	report := f.run(t)

	assert.Zero(t, report.Pruned)
	_, ok := f.store.docByExternal("b")
	assert.True(t, ok)
}

func TestRunPass_RejectsConcurrentSyncingState(t *testing.T) {
	f := newIndexerFixture("a")
	require.NoError(t, f.integrations.SetSyncStatus(context.Background(), "int-1", domain.SyncSyncing, ""))

	report := f.run(t)

	assert.ErrorIs(t, report.Err, domain.ErrInvalidTransition)
	assert.Zero(t, report.Listed)
}

func TestRunPass_ParallelWorkers(t *testing.T) {
	var items []string
	for i := range 50 {
		items = append(items, fmt.Sprintf("item-%02d", i))
	}
	f := newIndexerFixture(items...)
	f.cfg.Workers = 4

	report := f.run(t)

	require.NoError(t, report.Err)
	assert.Equal(t, 50, report.Indexed)
	stats, _ := f.store.Stats(context.Background())
	assert.Equal(t, 50, stats.Documents)
}
