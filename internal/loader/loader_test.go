package loader

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/finquill/finchat/internal/domain/docmodel"
	"github.com/finquill/finchat/internal/fiscal"
	"github.com/finquill/finchat/pkg/flog"
)

func init() {
	flog.Init(false)
}

type mockSearch struct {
	findDocumentsFunc func(ctx context.Context, tickers []string, quarter fiscal.Quarter) []string
}

func (m *mockSearch) FindDocuments(ctx context.Context, tickers []string, quarter fiscal.Quarter) []string {
	return m.findDocumentsFunc(ctx, tickers, quarter)
}

type mockIngestor struct {
	ingestURLFunc    func(ctx context.Context, docURL string) []docmodel.DocChunk
	ingestUploadFunc func(ctx context.Context, filename string, content []byte) []docmodel.DocChunk
}

func (m *mockIngestor) IngestURL(ctx context.Context, docURL string) []docmodel.DocChunk {
	return m.ingestURLFunc(ctx, docURL)
}

func (m *mockIngestor) IngestUpload(ctx context.Context, filename string, content []byte) []docmodel.DocChunk {
	return m.ingestUploadFunc(ctx, filename, content)
}

type mockPersister struct {
	persistFunc func(ctx context.Context, sourceName string, chunks []docmodel.DocChunk) error
}

func (m *mockPersister) Persist(ctx context.Context, sourceName string, chunks []docmodel.DocChunk) error {
	return m.persistFunc(ctx, sourceName, chunks)
}

func oneChunk(source string) []docmodel.DocChunk {
	return []docmodel.DocChunk{{
		Doc:     docmodel.Document{Source: source},
		Content: "chunk",
	}}
}

func newTestService(s *mockSearch, i *mockIngestor, p *mockPersister) *Service {
	svc := New(s, i, p)
	svc.clock = func() time.Time { return time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestLoadTickerContextHappyPath(t *testing.T) {
	var searchedQuarter fiscal.Quarter
	persisted := map[string]int{}

	svc := newTestService(
		&mockSearch{
			findDocumentsFunc: func(_ context.Context, tickers []string, q fiscal.Quarter) []string {
				searchedQuarter = q
				assert.Equal(t, []string{"AAPL", "MSFT"}, tickers)
				return []string{"https://x.com/a.pdf", "https://x.com/b.pdf"}
			},
		},
		&mockIngestor{
			ingestURLFunc: func(_ context.Context, docURL string) []docmodel.DocChunk {
				return oneChunk(docURL)
			},
		},
		&mockPersister{
			persistFunc: func(_ context.Context, source string, chunks []docmodel.DocChunk) error {
				persisted[source] = len(chunks)
				return nil
			},
		},
	)

	loaded := svc.LoadTickerContext(context.Background(), []string{"AAPL", "MSFT"})

	assert.Equal(t, []string{"https://x.com/a.pdf", "https://x.com/b.pdf"}, loaded)
	assert.Len(t, persisted, 2)
	assert.Equal(t, "Q1 FY2025-2026", searchedQuarter.Label())
}

func TestLoadTickerContextSkipsFailingDocuments(t *testing.T) {
	svc := newTestService(
		&mockSearch{
			findDocumentsFunc: func(context.Context, []string, fiscal.Quarter) []string {
				return []string{"https://x.com/empty.pdf", "https://x.com/good.pdf", "https://x.com/unstorable.pdf"}
			},
		},
		&mockIngestor{
			ingestURLFunc: func(_ context.Context, docURL string) []docmodel.DocChunk {
				if docURL == "https://x.com/empty.pdf" {
					return nil
				}
				return oneChunk(docURL)
			},
		},
		&mockPersister{
			persistFunc: func(_ context.Context, source string, _ []docmodel.DocChunk) error {
				if source == "https://x.com/unstorable.pdf" {
					return errors.New("qdrant down")
				}
				return nil
			},
		},
	)

	loaded := svc.LoadTickerContext(context.Background(), nil)
	assert.Nil(t, loaded)

	loaded = svc.LoadTickerContext(context.Background(), []string{"AAPL"})
	assert.Equal(t, []string{"https://x.com/good.pdf"}, loaded)
}

func TestLoadTickerContextNoDocumentsFound(t *testing.T) {
	svc := newTestService(
		&mockSearch{
			findDocumentsFunc: func(context.Context, []string, fiscal.Quarter) []string {
				return nil
			},
		},
		&mockIngestor{},
		&mockPersister{},
	)

	loaded := svc.LoadTickerContext(context.Background(), []string{"TSLA"})
	assert.Empty(t, loaded)
}

func TestIngestUploadCountsChunks(t *testing.T) {
	svc := newTestService(
		&mockSearch{},
		&mockIngestor{
			ingestUploadFunc: func(_ context.Context, filename string, _ []byte) []docmodel.DocChunk {
				return append(oneChunk(filename), oneChunk(filename)...)
			},
		},
		&mockPersister{
			persistFunc: func(context.Context, string, []docmodel.DocChunk) error { return nil },
		},
	)

	n, err := svc.IngestUpload(context.Background(), "report.pdf", []byte("%PDF"))

	assert.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestIngestUploadNoChunksIsAnError(t *testing.T) {
	svc := newTestService(
		&mockSearch{},
		&mockIngestor{
			ingestUploadFunc: func(context.Context, string, []byte) []docmodel.DocChunk { return nil },
		},
		&mockPersister{},
	)

	_, err := svc.IngestUpload(context.Background(), "broken.pdf", []byte("junk"))
	assert.Error(t, err)
}

func TestIngestUploadPersistFailurePropagates(t *testing.T) {
	svc := newTestService(
		&mockSearch{},
		&mockIngestor{
			ingestUploadFunc: func(_ context.Context, filename string, _ []byte) []docmodel.DocChunk {
				return oneChunk(filename)
			},
		},
		&mockPersister{
			persistFunc: func(context.Context, string, []docmodel.DocChunk) error {
				return errors.New("embedding quota exceeded")
			},
		},
	)

	_, err := svc.IngestUpload(context.Background(), "report.pdf", []byte("%PDF"))
	assert.ErrorContains(t, err, "embedding quota exceeded")
}
