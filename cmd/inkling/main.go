// Command inkling indexes local files, Gmail, Google Drive and Slack and
// searches them from the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/inkling/internal/adapters/driven/ai"
	"github.com/custodia-labs/inkling/internal/adapters/driven/config/file"
	"github.com/custodia-labs/inkling/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/inkling/internal/adapters/driven/vectorindex/linear"
	"github.com/custodia-labs/inkling/internal/adapters/driving/cli"
	"github.com/custodia-labs/inkling/internal/connectors"
	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/services"
	"github.com/custodia-labs/inkling/internal/logger"
	"github.com/custodia-labs/inkling/internal/normalisers"
	"github.com/custodia-labs/inkling/internal/postprocessors"
	"github.com/custodia-labs/inkling/internal/postprocessors/textclean"
	"github.com/custodia-labs/inkling/internal/postprocessors/tokens"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.SetBootstrap(bootstrap)

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// bootstrap opens the index and wires the services for cfg.
func bootstrap(ctx context.Context, cfg domain.Config) (*cli.Services, error) {
	dir, err := file.DataDir(cfg)
	if err != nil {
		return nil, err
	}
	store, err := sqlite.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	if n, err := store.ResetInterrupted(ctx); err != nil {
		_ = store.Close()
		return nil, err
	} else if n > 0 {
		logger.Notice("Marked %d interrupted sync(s) as failed", n)
	}

	// An unreachable embedder is not fatal: search answers from the
	// keyword leg and the indexer stores chunks without vectors.
	embedding, queryEmbedding, err := ai.ConnectEmbeddingService(cfg.Embedding)
	if err != nil {
		logger.Notice("%v; searching by keyword only", err)
	}
	logger.Debug("Index at %s, embedding model %s (%d dims)", dir, embedding.ModelName(), embedding.Dimensions())

	chunks := store.ChunkStore()
	integrations := store.IntegrationStore()
	factory := connectors.Defaults(cfg, integrations)

	indexer := services.NewIndexer(
		integrations,
		chunks,
		factory,
		normalisers.Defaults(cfg.Indexing),
		postprocessors.Defaults(cfg.Indexing, tokens.WordPiece{}),
		textclean.New(),
		embedding,
		cfg.Indexing,
	)

	return &cli.Services{
		Search:       services.NewSearchService(chunks, linear.New(chunks), queryEmbedding, cfg.Search),
		Integrations: services.NewIntegrationService(ctx, integrations, factory, indexer),
		Inspect:      services.NewInspectService(chunks),
		Close: func() error {
			_ = embedding.Close()
			return store.Close()
		},
	}, nil
}
