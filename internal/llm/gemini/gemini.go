package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/llm"
	"github.com/finquill/finchat/internal/metrics"
	"github.com/finquill/finchat/pkg/flog"
)

func init() {
	llm.Register("gemini", func(ctx context.Context, cfg *config.Config) (llm.Provider, error) {
		return New(ctx, cfg)
	})
}

type Client struct {
	genAi       *genai.Client
	modelName   string
	temperature float32
	logger      *flog.Logger
}

func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GoogleAPIKey})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	logger := flog.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", cfg.ModelName)

	return &Client{
		genAi:       c,
		modelName:   cfg.ModelName,
		temperature: config.ModelTemperature,
		logger:      logger,
	}, nil
}

func (c *Client) Generate(ctx context.Context, system string, user string) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generate", time.Since(start)) }()

	result, err := c.genAi.Models.GenerateContent(
		ctx,
		c.modelName,
		genai.Text(user),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: system}},
			},
			Temperature: genai.Ptr(c.temperature),
		},
	)
	if err != nil {
		c.logger.Error("Gemini generation failed", "error", err)
		return "", err
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}
