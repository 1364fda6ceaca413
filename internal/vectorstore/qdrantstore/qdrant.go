// Package qdrantstore backs the vector store interface with Qdrant
// collections, one collection per document source.
package qdrantstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/domain/docmodel"
	"github.com/finquill/finchat/internal/metrics"
	"github.com/finquill/finchat/internal/vectorstore"
	"github.com/finquill/finchat/pkg/flog"
)

type Store struct {
	client    *qdrant.Client
	dimension uint64
	logger    *flog.Logger
}

var _ vectorstore.Store = (*Store)(nil)

func New(cfg *config.Config) (*Store, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.QdrantHost,
		Port:   cfg.QdrantPort,
		UseTLS: cfg.QdrantUseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	logger := flog.NewLogger("Qdrant")
	logger.Info("Qdrant client created", "host", cfg.QdrantHost, "port", cfg.QdrantPort)

	return &Store{
		client:    client,
		dimension: uint64(config.EmbeddingOutputDimensionality),
		logger:    logger,
	}, nil
}

func (s *Store) Close() {
	if err := s.client.Close(); err != nil {
		s.logger.Error("Could not close qdrant client", "error", err)
	}
}

func (s *Store) EnsureIndex(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("empty index name")
	}

	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     s.dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (s *Store) DropIndex(ctx context.Context, name string) error {
	return s.client.DeleteCollection(ctx, name)
}

func (s *Store) Append(ctx context.Context, name string, chunks []docmodel.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":       chunk.Content,
				"source":        chunk.Doc.Source,
				"source_doc_id": chunk.Doc.Id,
				"chunk_id":      chunk.ChunkId,
				"page_num":      chunk.PageNum,
				"chunk_order":   chunk.Order,
				"ingested_at":   chunk.Doc.IngestedAt.Unix(),
			}),
		}
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

// ListIndexes returns every per-source collection. Collections that do not
// carry the index prefix belong to someone else and are left alone.
func (s *Store) ListIndexes(ctx context.Context) ([]string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("qdrant_list", time.Since(start)) }()

	collections, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	var indexes []string
	for _, name := range collections {
		if strings.HasPrefix(name, config.IndexPrefix) {
			indexes = append(indexes, name)
		}
	}
	return indexes, nil
}

func (s *Store) Search(ctx context.Context, name string, vector []float32, limit int) ([]docmodel.DocChunk, error) {
	result, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", name, err)
	}

	chunks := make([]docmodel.DocChunk, 0, len(result))
	for _, hit := range result {
		chunks = append(chunks, docmodel.DocChunk{
			Doc: docmodel.Document{
				Id:         hit.Payload["source_doc_id"].GetStringValue(),
				Source:     hit.Payload["source"].GetStringValue(),
				IngestedAt: time.Unix(hit.Payload["ingested_at"].GetIntegerValue(), 0),
			},
			ChunkId: hit.Payload["chunk_id"].GetStringValue(),
			Content: hit.Payload["content"].GetStringValue(),
			PageNum: int(hit.Payload["page_num"].GetIntegerValue()),
			Order:   int(hit.Payload["chunk_order"].GetIntegerValue()),
		})
	}
	return chunks, nil
}
