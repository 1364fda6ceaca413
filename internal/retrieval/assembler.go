// Package retrieval gathers supporting chunks for a question by fanning a
// query out across every per-source index.
package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/finquill/finchat/internal/domain/docmodel"
	"github.com/finquill/finchat/internal/embedding"
	"github.com/finquill/finchat/internal/metrics"
	"github.com/finquill/finchat/pkg/flog"
)

// Searcher is what the assembler needs from the vector store layer.
type Searcher interface {
	ListIndexes(ctx context.Context) ([]string, error)
	Search(ctx context.Context, index string, vector []float32) ([]docmodel.DocChunk, error)
}

// Context is the retrieved material for one question. Sources lists the
// indexes that contributed at least one chunk.
type Context struct {
	Chunks  []docmodel.DocChunk
	Sources []string
}

func (c Context) HasContext() bool {
	return len(c.Chunks) > 0
}

// Text flattens the chunks into a single prompt-ready block.
func (c Context) Text() string {
	parts := make([]string, 0, len(c.Chunks))
	for _, chunk := range c.Chunks {
		parts = append(parts, chunk.Content)
	}
	return strings.Join(parts, "\n\n")
}

type Assembler struct {
	searcher Searcher
	embedder embedding.Embedder
	logger   *flog.Logger
}

func NewAssembler(searcher Searcher, embedder embedding.Embedder) *Assembler {
	return &Assembler{
		searcher: searcher,
		embedder: embedder,
		logger:   flog.NewLogger("Context Assembler"),
	}
}

// Assemble recomputes retrieval context for every call, nothing is cached
// between questions. It never fails the request: with the flag off, no
// indexes, or every lookup erroring out, the answer path continues with an
// empty context.
func (a *Assembler) Assemble(ctx context.Context, question string, contextAware bool) Context {
	if !contextAware {
		return Context{}
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("context_assembly", time.Since(start)) }()

	indexes, err := a.searcher.ListIndexes(ctx)
	if err != nil {
		a.logger.Error("Could not enumerate indexes, answering without context", "error", err)
		return Context{}
	}
	if len(indexes) == 0 {
		return Context{}
	}

	vector, err := a.embedder.EmbedQuery(ctx, question)
	if err != nil {
		a.logger.Error("Query embedding failed, answering without context", "error", err)
		return Context{}
	}

	var out Context
	for _, index := range indexes {
		chunks, err := a.searcher.Search(ctx, index, vector)
		if err != nil {
			a.logger.Error("Index lookup failed, skipping", "index", index, "error", err)
			continue
		}
		if len(chunks) == 0 {
			continue
		}
		out.Chunks = append(out.Chunks, chunks...)
		out.Sources = append(out.Sources, index)
	}

	a.logger.Info("Context assembled", "indexes", len(indexes), "chunks", len(out.Chunks))
	return out
}
