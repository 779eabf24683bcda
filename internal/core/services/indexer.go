package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/inkling/internal/core/domain"
	"github.com/custodia-labs/inkling/internal/core/ports/driven"
	"github.com/custodia-labs/inkling/internal/core/ports/driving"
	"github.com/custodia-labs/inkling/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// Indexer runs the ingestion pipeline for one integration:
// list → fetch → normalise → clean → upsert → segment → embed → replace.
type Indexer struct {
	integrations driven.IntegrationStore
	chunks       driven.ChunkStore
	factory      driven.ConnectorFactory
	normalisers  driven.NormaliserRegistry
	segmenters   map[domain.SegmentPolicy]driven.Segmenter
	cleaner      driven.TextCleaner
	embedding    driven.EmbeddingService
	cfg          domain.IndexingConfig
	now          func() time.Time
}

// NewIndexer creates an indexer. All dependencies are required.
func NewIndexer(
	integrations driven.IntegrationStore,
	chunks driven.ChunkStore,
	factory driven.ConnectorFactory,
	normalisers driven.NormaliserRegistry,
	segmenters map[domain.SegmentPolicy]driven.Segmenter,
	cleaner driven.TextCleaner,
	embedding driven.EmbeddingService,
	cfg domain.IndexingConfig,
) *Indexer {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Indexer{
		integrations: integrations,
		chunks:       chunks,
		factory:      factory,
		normalisers:  normalisers,
		segmenters:   segmenters,
		cleaner:      cleaner,
		embedding:    embedding,
		cfg:          cfg,
		now:          time.Now,
	}
}

// passState collects per-item outcomes from concurrent workers.
type passState struct {
	mu       sync.Mutex
	report   domain.PassReport
	produced map[string]struct{}
	failed   []string
}

func (p *passState) produce(externalID string) {
	p.mu.Lock()
	p.produced[externalID] = struct{}{}
	p.mu.Unlock()
}

func (p *passState) fail(itemID string) {
	p.mu.Lock()
	p.failed = append(p.failed, itemID)
	p.report.Skipped++
	p.mu.Unlock()
}

func (p *passState) count(f func(r *domain.PassReport)) {
	p.mu.Lock()
	f(&p.report)
	p.mu.Unlock()
}

// RunPass indexes one integration. The sync status is set to syncing on
// entry and to success or error on exit; per-document failures are logged
// and skipped without failing the pass.
func (ix *Indexer) RunPass(ctx context.Context, integration domain.Integration) domain.PassReport {
	logger.Section(fmt.Sprintf("Indexing %s (%s)", integration.Provider, integration.ID))

	report := domain.PassReport{
		IntegrationID: integration.ID,
		Provider:      integration.Provider,
		Status:        integration.SyncStatus,
	}
	if err := ix.integrations.SetSyncStatus(ctx, integration.ID, domain.SyncSyncing, ""); err != nil {
		report.Err = fmt.Errorf("start pass: %w", err)
		logger.Error("Cannot start pass for %s: %v", integration.ID, err)
		return report
	}

	state := &passState{report: report, produced: make(map[string]struct{})}
	err := ix.run(ctx, integration, state)
	return ix.finish(ctx, integration, state, err)
}

func (ix *Indexer) run(ctx context.Context, integration domain.Integration, state *passState) error {
	conn, err := ix.factory.Create(ctx, integration)
	if err != nil {
		return fmt.Errorf("create connector: %w", err)
	}
	defer conn.Close()

	items, err := conn.ListItems(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	state.count(func(r *domain.PassReport) { r.Listed = len(items) })
	logger.Info("Listed %d items", len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Workers)
	for _, item := range items {
		g.Go(func() error {
			return ix.processItem(gctx, conn, integration, item, state)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if rep, ok := conn.(driven.CompletenessReporter); ok && !rep.Complete() {
		logger.Debug("Listing was partial, skipping prune")
		return nil
	}
	return ix.prune(ctx, integration.ID, state)
}

// processItem returns an error only when the pass must abort.
func (ix *Indexer) processItem(
	ctx context.Context,
	conn driven.Connector,
	integration domain.Integration,
	item domain.ItemHandle,
	state *passState,
) error {
	raw, err := conn.FetchContent(ctx, item)
	if err != nil {
		if domain.IsFatal(err) {
			return err
		}
		logger.Notice("Skipping %s: %v", item.ExternalID, err)
		state.fail(item.ExternalID)
		return nil
	}

	docs, err := ix.normalisers.Normalise(ctx, raw)
	if err != nil {
		logger.Notice("Skipping %s: %v", item.ExternalID, err)
		state.fail(item.ExternalID)
		return nil
	}

	for i := range docs {
		if err := ix.indexDocument(ctx, integration, &docs[i], state); err != nil {
			if domain.IsFatal(err) {
				return err
			}
			logger.Notice("Skipping document %s: %v", docs[i].Document.ExternalID, err)
			state.fail(docs[i].Document.ExternalID)
		}
	}
	return nil
}

func (ix *Indexer) indexDocument(
	ctx context.Context,
	integration domain.Integration,
	nd *domain.NormalisedDocument,
	state *passState,
) error {
	text := ix.cleaner.Clean(nd.Text)
	if text == "" {
		logger.Debug("Empty after cleaning: %s", nd.Document.ExternalID)
		state.count(func(r *domain.PassReport) { r.Empty++ })
		return nil
	}

	doc := nd.Document
	doc.IntegrationID = integration.ID
	doc.Owner = integration.Owner
	docID, err := ix.chunks.UpsertDocument(ctx, &doc)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	state.produce(doc.ExternalID)

	segmenter, ok := ix.segmenters[nd.Policy]
	if !ok {
		segmenter = ix.segmenters[domain.SegmentSemantic]
	}
	segments := segmenter.Segment(text)
	if len(segments) == 0 {
		state.count(func(r *domain.PassReport) { r.Empty++ })
		return nil
	}
	logger.Debug("%s: %d chunks via %s", doc.ExternalID, len(segments), segmenter.Name())

	vectors, err := ix.embed(ctx, segments)
	if err != nil {
		return err
	}

	added := ix.now()
	chunks := make([]domain.Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = domain.Chunk{
			DocumentID: docID,
			Text:       seg,
			Embedding:  vectors[i],
			Position:   i,
			AddedAt:    added,
		}
	}

	if err := ix.chunks.ReplaceChunks(ctx, docID, chunks); err != nil {
		return err
	}
	state.count(func(r *domain.PassReport) { r.Indexed++ })
	return nil
}

// embed returns one vector per text. Documents above the sentinel threshold
// get zero vectors without calling the embedder. A failed batch is retried
// item by item; items that still fail get a zero vector.
func (ix *Indexer) embed(ctx context.Context, texts []string) ([][]float32, error) {
	dims := ix.embedding.Dimensions()
	vectors := make([][]float32, len(texts))

	if ix.cfg.SentinelThreshold > 0 && len(texts) > ix.cfg.SentinelThreshold {
		logger.Debug("%d chunks exceeds %d, storing sentinel vectors", len(texts), ix.cfg.SentinelThreshold)
		for i := range vectors {
			vectors[i] = make([]float32, dims)
		}
		return vectors, nil
	}

	batch, err := ix.embedding.EmbedBatch(ctx, texts)
	if err == nil && len(batch) == len(texts) {
		for i, v := range batch {
			vectors[i] = fitVector(v, dims)
		}
		return vectors, nil
	}
	if err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}
	logger.Warn("%v: batch of %d (%v), retrying per item", domain.ErrEmbedding, len(texts), err)

	for i, text := range texts {
		v, err := ix.embedding.Embed(ctx, text)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("%v: chunk %d (%v), storing sentinel", domain.ErrEmbedding, i, err)
			v = nil
		}
		vectors[i] = fitVector(v, dims)
	}
	return vectors, nil
}

// fitVector replaces vectors of the wrong width with a zero sentinel.
func fitVector(v []float32, dims int) []float32 {
	if len(v) != dims {
		return make([]float32, dims)
	}
	return v
}

// prune deletes documents the pass no longer produced. Documents belonging
// to items that failed keep their previous chunks.
func (ix *Indexer) prune(ctx context.Context, integrationID string, state *passState) error {
	keys, err := ix.chunks.ListDocumentKeys(ctx, integrationID)
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	for externalID, docID := range keys {
		if _, ok := state.produced[externalID]; ok {
			continue
		}
		if coveredByFailure(externalID, state.failed) {
			continue
		}
		if err := ix.chunks.DeleteDocument(ctx, docID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("prune %s: %w", externalID, err)
		}
		logger.Debug("Pruned %s", externalID)
		state.report.Pruned++
	}
	return nil
}

// coveredByFailure matches a document to a failed item. Items that fan out
// into several documents name them "<item>_<n>".
func coveredByFailure(externalID string, failed []string) bool {
	for _, f := range failed {
		if externalID == f || strings.HasPrefix(externalID, f+"_") {
			return true
		}
	}
	return false
}

func (ix *Indexer) finish(
	ctx context.Context, integration domain.Integration, state *passState, err error,
) domain.PassReport {
	report := state.report
	status, lastErr := domain.SyncSuccess, ""
	if err != nil {
		status, lastErr = domain.SyncError, err.Error()
		report.Err = err
		logger.Error("Pass for %s failed: %v", integration.ID, err)
	}

	// Status must be recorded even when the pass was cancelled.
	if serr := ix.integrations.SetSyncStatus(context.WithoutCancel(ctx), integration.ID, status, lastErr); serr != nil {
		logger.Error("Cannot record status for %s: %v", integration.ID, serr)
		report.Err = errors.Join(report.Err, serr)
	}
	report.Status = status

	logger.Info("Pass %s: %s (listed %d, indexed %d, skipped %d, empty %d, pruned %d)",
		integration.ID, status, report.Listed, report.Indexed, report.Skipped, report.Empty, report.Pruned)
	return report
}
