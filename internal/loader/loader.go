// Package loader drives the ingestion side: ticker discovery through web
// search and direct file uploads, both ending in persisted chunks.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/finquill/finchat/internal/domain/docmodel"
	"github.com/finquill/finchat/internal/fiscal"
	"github.com/finquill/finchat/internal/search"
	"github.com/finquill/finchat/pkg/flog"
)

// Ingestor chunks one document, from a URL or an uploaded buffer.
type Ingestor interface {
	IngestURL(ctx context.Context, docURL string) []docmodel.DocChunk
	IngestUpload(ctx context.Context, filename string, content []byte) []docmodel.DocChunk
}

// Persister writes chunks to the per-source index.
type Persister interface {
	Persist(ctx context.Context, sourceName string, chunks []docmodel.DocChunk) error
}

type Service struct {
	search    search.Provider
	ingestor  Ingestor
	persister Persister
	clock     fiscal.Clock
	logger    *flog.Logger
}

func New(searchProvider search.Provider, ingestor Ingestor, persister Persister) *Service {
	return &Service{
		search:    searchProvider,
		ingestor:  ingestor,
		persister: persister,
		clock:     time.Now,
		logger:    flog.NewLogger("Data Loader"),
	}
}

// LoadTickerContext finds the latest quarterly documents for the tickers,
// ingests and persists each one. It returns the URLs that made it all the
// way in. A URL that fails anywhere along the pipeline is logged and
// skipped, never fatal for the batch.
func (s *Service) LoadTickerContext(ctx context.Context, tickers []string) []string {
	if len(tickers) == 0 {
		return nil
	}

	quarter := fiscal.Current(s.clock)
	s.logger.Info("Loading ticker context", "tickers", tickers, "quarter", quarter.Label())

	urls := s.search.FindDocuments(ctx, tickers, quarter)

	var loaded []string
	for _, docURL := range urls {
		chunks := s.ingestor.IngestURL(ctx, docURL)
		if len(chunks) == 0 {
			s.logger.Warn("Document yielded no chunks, skipping", "url", docURL)
			continue
		}

		if err := s.persister.Persist(ctx, docURL, chunks); err != nil {
			s.logger.Error("Could not persist document", "url", docURL, "error", err)
			continue
		}
		loaded = append(loaded, docURL)
	}

	s.logger.Info("Ticker context loaded", "discovered", len(urls), "persisted", len(loaded))
	return loaded
}

// IngestUpload chunks an uploaded document and persists it under its
// filename. Zero chunks means nothing was stored, which the caller should
// treat as a failed upload.
func (s *Service) IngestUpload(ctx context.Context, filename string, content []byte) (int, error) {
	chunks := s.ingestor.IngestUpload(ctx, filename, content)
	if len(chunks) == 0 {
		return 0, errors.New("document produced no chunks")
	}

	if err := s.persister.Persist(ctx, filename, chunks); err != nil {
		return 0, fmt.Errorf("persisting %s: %w", filename, err)
	}
	return len(chunks), nil
}
