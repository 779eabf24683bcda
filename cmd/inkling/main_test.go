package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/inkling/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/inkling/internal/core/domain"
)

func testConfig(t *testing.T) domain.Config {
	t.Helper()
	cfg := domain.DefaultConfig()
	cfg.Storage.DataDir = t.TempDir()
	return cfg
}

func TestBootstrap_EmbedderDown(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedding.Provider = domain.EmbeddingOllama
	cfg.Embedding.BaseURL = "http://127.0.0.1:1"
	cfg.Embedding.Model = "nomic-embed-text"
	cfg.Embedding.Dimensions = 8

	ctx := context.Background()
	svc, err := bootstrap(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, svc.Search)
	defer func() { assert.NoError(t, svc.Close()) }()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "fruit.txt"),
		[]byte("The kumquat harvest starts in November."), 0o600))

	_, err = svc.Integrations.AddLocal(ctx, "alice", root)
	require.NoError(t, err)
	svc.Integrations.Wait()

	results, err := svc.Search.Search(ctx, "kumquat", domain.SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].ChunkText, "kumquat")
}

func TestBootstrap_ResetsInterruptedSync(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	// Leave an integration in syncing, as a process killed mid-pass would.
	store, err := sqlite.NewStore(cfg.Storage.DataDir)
	require.NoError(t, err)
	in := &domain.Integration{
		Owner:    "alice",
		Provider: domain.ProviderFilesystem,
		Account:  t.TempDir(),
	}
	in.Config = map[string]string{"root": in.Account}
	require.NoError(t, store.IntegrationStore().Save(ctx, in))
	require.NoError(t, store.IntegrationStore().SetSyncStatus(ctx, in.ID, domain.SyncSyncing, ""))
	require.NoError(t, store.Close())

	svc, err := bootstrap(ctx, cfg)
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	list, err := svc.Integrations.Status(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.SyncError, list[0].SyncStatus)
	assert.Equal(t, sqlite.InterruptedError, list[0].LastError)

	reports, err := svc.Integrations.IndexNow(ctx, "alice", nil)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.NoError(t, reports[0].Err)
	assert.Equal(t, domain.SyncSuccess, reports[0].Status)
}
