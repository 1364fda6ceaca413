package googleembedding

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/embedding"
	"github.com/finquill/finchat/internal/metrics"
	"github.com/finquill/finchat/pkg/flog"
)

type Client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	logger    *flog.Logger
}

var _ embedding.Embedder = (*Client)(nil)

func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GoogleAPIKey})
	if err != nil {
		return nil, fmt.Errorf("creating google embedding client: %w", err)
	}

	logger := flog.NewLogger("google_embedding")
	logger.Info("Google Embedding client created", "model", cfg.EmbeddingModelName)

	return &Client{
		genAi:     c,
		model:     cfg.EmbeddingModelName,
		dimension: config.EmbeddingOutputDimensionality,
		logger:    logger,
	}, nil
}

func (c *Client) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding_query", time.Since(start)) }()

	result, err := c.embed(ctx, genai.Text(query), "RETRIEVAL_QUERY")
	if err != nil {
		c.logger.Error("Error getting query embedding", "error", err)
		return nil, err
	}

	vector, err := firstEmbedding(result)
	if err != nil {
		c.logger.Error("Error getting query embedding", "error", err)
		return nil, err
	}
	return vector, nil
}

func firstEmbedding(res *genai.EmbedContentResponse) ([]float32, error) {
	if res == nil || len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding count mismatch: 1 query, 0 vectors")
	}
	return res.Embeddings[0].Values, nil
}

func (c *Client) EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding_batch", time.Since(start)) }()

	var vectors [][]float32

	for begin := 0; begin < len(chunks); begin += config.EmbeddingBatchSize {
		end := begin + config.EmbeddingBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch, err := c.embedBatch(ctx, chunks[begin:end])
		if err != nil {
			return nil, fmt.Errorf("embedding batch starting at %d: %w", begin, err)
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (c *Client) embedBatch(ctx context.Context, chunks []string) ([][]float32, error) {
	res, err := c.embed(ctx, toContents(chunks), "RETRIEVAL_DOCUMENT")
	if err != nil && isRateLimited(err) {
		c.logger.Warn("Rate limit hit, retrying once", "pause", config.LLMRetryPause)
		time.Sleep(config.LLMRetryPause)
		res, err = c.embed(ctx, toContents(chunks), "RETRIEVAL_DOCUMENT")
	}
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, e := range res.Embeddings {
		vectors = append(vectors, e.Values)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}
	return vectors, nil
}

func (c *Client) embed(ctx context.Context, content []*genai.Content, taskType string) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content, &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             taskType,
	})
}

func toContents(chunks []string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contents
}

func isRateLimited(err error) bool {
	if s, ok := status.FromError(err); ok {
		return s.Code() == codes.ResourceExhausted
	}
	return false
}
