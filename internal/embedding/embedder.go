package embedding

import "context"

type Embedder interface {
	// EmbedQuery embeds a single search query.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	// EmbedChunks embeds document chunks, one vector per input in order.
	EmbedChunks(ctx context.Context, chunks []string) ([][]float32, error)
}
