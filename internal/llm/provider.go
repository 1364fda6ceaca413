// Package llm abstracts the hosted model behind a single generation call.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/finquill/finchat/internal/config"
)

type Provider interface {
	// Generate sends a system instruction and a user message to the model
	// and returns its raw text reply.
	Generate(ctx context.Context, system string, user string) (string, error)
}

// Factory builds a provider for one model family. Registered per family
// so ForModel stays free of SDK imports.
type Factory func(ctx context.Context, cfg *config.Config) (Provider, error)

var factories = map[string]Factory{}

// Register binds a model name prefix ("gemini", "gpt") to its factory.
// Called from provider package init functions.
func Register(prefix string, f Factory) {
	factories[prefix] = f
}

// ForModel picks the provider for the configured model name by prefix.
func ForModel(ctx context.Context, cfg *config.Config) (Provider, error) {
	for prefix, factory := range factories {
		if strings.HasPrefix(cfg.ModelName, prefix) {
			return factory(ctx, cfg)
		}
	}
	return nil, fmt.Errorf("unsupported model: %s", cfg.ModelName)
}
