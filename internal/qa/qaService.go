// Package qa is the question answering pipeline: optional ticker
// discovery, cache lookup, context assembly, prompt construction and model
// generation, all within the request.
package qa

import (
	"context"
	"time"

	"github.com/finquill/finchat/internal/answer"
	"github.com/finquill/finchat/internal/cache"
	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/metrics"
	"github.com/finquill/finchat/internal/prompt"
	"github.com/finquill/finchat/internal/retrieval"
	"github.com/finquill/finchat/pkg/flog"
)

// Question is one user query. Ticker optionally names a stock whose latest
// filings should be pulled in before answering.
type Question struct {
	Text         string
	ContextAware bool
	Ticker       string
}

// Service is the public contract the HTTP layer calls. The implementation
// stays private so handlers never touch the model or store clients.
type Service interface {
	Ask(ctx context.Context, q Question) (answer.Answer, error)
}

// TickerLoader pulls fresh filings for a ticker into the vector store.
type TickerLoader interface {
	LoadTickerContext(ctx context.Context, tickers []string) []string
}

type service struct {
	assembler *retrieval.Assembler
	generator *answer.Generator
	loader    TickerLoader
	answers   cache.AnswerCache
	cacheTTL  time.Duration
	logger    *flog.Logger
}

func NewService(assembler *retrieval.Assembler, generator *answer.Generator, loader TickerLoader, answers cache.AnswerCache) Service {
	return &service{
		assembler: assembler,
		generator: generator,
		loader:    loader,
		answers:   answers,
		cacheTTL:  config.AnswerCacheTTL,
		logger:    flog.NewLogger("QA Service"),
	}
}

func (s *service) Ask(ctx context.Context, q Question) (answer.Answer, error) {
	logger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("ask_pipeline", time.Since(start)) }()

	// A ticker hint means the user wants fresh filings considered, whether
	// or not retrieval is on for this question. A failed load degrades to
	// answering from whatever is already indexed.
	if q.Ticker != "" {
		loaded := s.loader.LoadTickerContext(ctx, []string{q.Ticker})
		if len(loaded) == 0 {
			logger.Warn("No fresh documents for ticker, using existing indexes", "ticker", q.Ticker)
		}
	}

	key := cache.Key(q.Text, q.ContextAware)
	if raw, ok := s.answers.Get(ctx, key); ok {
		logger.Info("Answer served from cache")
		metrics.CountQuestion("cache_hit", q.ContextAware)
		return answer.Parse(raw), nil
	}

	assembled := s.assembler.Assemble(ctx, q.Text, q.ContextAware)
	if q.ContextAware && !assembled.HasContext() {
		logger.Warn("Context requested but none available, answering without it")
	}

	p := prompt.Build(assembled.HasContext()).Render(assembled.Text(), q.Text)

	result, err := s.generator.Generate(ctx, p)
	if err != nil {
		metrics.CountQuestion("error", q.ContextAware)
		return answer.Answer{}, err
	}

	s.answers.Set(ctx, key, result.Raw, s.cacheTTL)
	metrics.CountQuestion("ok", q.ContextAware)
	logger.Info("Question answered", "structured", result.Kind == answer.KindStructured, "sources", len(assembled.Sources))
	return result, nil
}
