package openai

import (
	"context"
	"errors"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/llm"
	"github.com/finquill/finchat/internal/metrics"
	"github.com/finquill/finchat/pkg/flog"
)

func init() {
	llm.Register("gpt", func(_ context.Context, cfg *config.Config) (llm.Provider, error) {
		return New(cfg), nil
	})
}

type Client struct {
	client      openai.Client
	modelName   string
	temperature float64
	logger      *flog.Logger
}

func New(cfg *config.Config) *Client {
	logger := flog.NewLogger("llm_openai")
	logger.Info("OpenAI client created", "model", cfg.ModelName)

	return &Client{
		client:      openai.NewClient(option.WithAPIKey(cfg.OpenAIAPIKey)),
		modelName:   cfg.ModelName,
		temperature: float64(config.ModelTemperature),
		logger:      logger,
	}
}

func (c *Client) Generate(ctx context.Context, system string, user string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generate", time.Since(start)) }()

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.modelName),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		c.logger.Error("OpenAI generation failed", "error", err)
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
