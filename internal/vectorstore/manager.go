// Package vectorstore owns one persisted embedding index per document
// source. Indexes are created on first write, appended to afterwards and
// never deleted by the pipeline itself.
package vectorstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/domain/docmodel"
	"github.com/finquill/finchat/internal/embedding"
	"github.com/finquill/finchat/internal/metrics"
	"github.com/finquill/finchat/pkg/flog"
)

type Manager struct {
	store    Store
	embedder embedding.Embedder
	logger   *flog.Logger
}

func NewManager(store Store, embedder embedding.Embedder) *Manager {
	return &Manager{
		store:    store,
		embedder: embedder,
		logger:   flog.NewLogger("Vector Store"),
	}
}

// Persist embeds chunks and appends them to the index named after their
// source. A failed append gets one rebuild-from-scratch attempt before the
// error propagates. No dedup: re-ingesting a document duplicates entries.
func (m *Manager) Persist(ctx context.Context, sourceName string, chunks []docmodel.DocChunk) error {
	if len(chunks) == 0 {
		m.logger.Warn("No chunks to persist", "source", sourceName)
		return nil
	}

	index := IndexName(sourceName)

	texts := make([]string, 0, len(chunks))
	for _, c := range chunks {
		texts = append(texts, c.Content)
	}

	vectors, err := m.embedder.EmbedChunks(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding %d chunks for %s: %w", len(chunks), sourceName, err)
	}

	if err := m.store.EnsureIndex(ctx, index); err != nil {
		return fmt.Errorf("creating index %s: %w", index, err)
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start)) }()

	if err := m.store.Append(ctx, index, chunks, vectors); err != nil {
		m.logger.Error("Append failed, rebuilding index from scratch", "index", index, "error", err)
		if err := m.rebuild(ctx, index, chunks, vectors); err != nil {
			return fmt.Errorf("rebuilding index %s: %w", index, err)
		}
	}

	metrics.CountChunksIngested(len(chunks))
	m.logger.Info("Persisted chunks", "index", index, "chunks", len(chunks))
	return nil
}

func (m *Manager) rebuild(ctx context.Context, index string, chunks []docmodel.DocChunk, vectors [][]float32) error {
	if err := m.store.DropIndex(ctx, index); err != nil {
		m.logger.Error("Dropping corrupt index failed", "index", index, "error", err)
	}
	if err := m.store.EnsureIndex(ctx, index); err != nil {
		return err
	}
	return m.store.Append(ctx, index, chunks, vectors)
}

// ListIndexes enumerates every known per-source index. A store that holds
// none (or does not exist yet) yields an empty list, not an error.
func (m *Manager) ListIndexes(ctx context.Context) ([]string, error) {
	return m.store.ListIndexes(ctx)
}

// Search runs a nearest-chunk query against one index.
func (m *Manager) Search(ctx context.Context, index string, vector []float32) ([]docmodel.DocChunk, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return m.store.Search(ctx, index, vector, config.SearchTopK)
}

// IndexName maps a document source (filename or URL) onto a collection
// name the store accepts. Same source, same index - repeated ingestion of
// one document appends to its existing collection.
func IndexName(sourceName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(sourceName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}

	name := strings.Trim(b.String(), "-")
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}
	if len(name) > 64 {
		name = name[:64]
	}
	return config.IndexPrefix + name
}
