package vectorstore

import (
	"context"

	"github.com/finquill/finchat/internal/domain/docmodel"
)

// Store is the minimal surface the pipeline needs from a vector database:
// named append-only indexes with k-nearest search and enumeration.
type Store interface {
	EnsureIndex(ctx context.Context, name string) error
	DropIndex(ctx context.Context, name string) error
	Append(ctx context.Context, name string, chunks []docmodel.DocChunk, vectors [][]float32) error
	ListIndexes(ctx context.Context) ([]string, error)
	Search(ctx context.Context, name string, vector []float32, limit int) ([]docmodel.DocChunk, error)
}
