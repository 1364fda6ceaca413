package answer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/llm"
	"github.com/finquill/finchat/internal/prompt"
	"github.com/finquill/finchat/pkg/flog"
)

// Generator drives the model call with bounded retries and parses the
// reply into an Answer.
type Generator struct {
	provider llm.Provider
	retries  int
	pause    time.Duration
	logger   *flog.Logger
}

func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{
		provider: provider,
		retries:  config.LLMMaxRetries,
		pause:    config.LLMRetryPause,
		logger:   flog.NewLogger("Answer Generator"),
	}
}

// Generate calls the model, retrying transient failures up to the
// configured limit. A cancelled or timed-out request is never retried.
func (g *Generator) Generate(ctx context.Context, p prompt.Prompt) (Answer, error) {
	var lastErr error

	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying generation", "attempt", attempt, "error", lastErr)
			time.Sleep(g.pause)
		}

		raw, err := g.provider.Generate(ctx, p.System, p.Question)
		if err == nil {
			return Parse(raw), nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Answer{}, err
		}
		lastErr = err
	}

	return Answer{}, fmt.Errorf("generation failed after %d attempts: %w", g.retries+1, lastErr)
}
