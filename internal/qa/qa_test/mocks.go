package qa_test

import (
	"context"

	"github.com/finquill/finchat/internal/domain/docmodel"
)

// MockSearcher implements retrieval.Searcher
type MockSearcher struct {
	// Control fields to simulate different behaviors
	OnListIndexes func(ctx context.Context) ([]string, error)
	OnSearch      func(ctx context.Context, index string, vector []float32) ([]docmodel.DocChunk, error)
}

func (m *MockSearcher) ListIndexes(ctx context.Context) ([]string, error) {
	if m.OnListIndexes != nil {
		return m.OnListIndexes(ctx)
	}
	return []string{"findocs-default"}, nil
}

func (m *MockSearcher) Search(ctx context.Context, index string, vector []float32) ([]docmodel.DocChunk, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, index, vector)
	}
	return []docmodel.DocChunk{{
		Doc:     docmodel.Document{Source: index},
		Content: "default context",
	}}, nil
}

type MockEmbedder struct {
	OnEmbedQuery  func(ctx context.Context, query string) ([]float32, error)
	OnEmbedChunks func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if m.OnEmbedQuery != nil {
		return m.OnEmbedQuery(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnEmbedChunks != nil {
		return m.OnEmbedChunks(ctx, chunks)
	}
	return make([][]float32, len(chunks)), nil
}

// MockLLM implements llm.Provider
type MockLLM struct {
	OnGenerate func(ctx context.Context, system string, user string) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, system string, user string) (string, error) {
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, system, user)
	}
	return "mocked llm response", nil
}

// MockLoader implements qa.TickerLoader
type MockLoader struct {
	OnLoadTickerContext func(ctx context.Context, tickers []string) []string
}

func (m *MockLoader) LoadTickerContext(ctx context.Context, tickers []string) []string {
	if m.OnLoadTickerContext != nil {
		return m.OnLoadTickerContext(ctx, tickers)
	}
	return nil
}
