// Package ingest turns an uploaded file or a remote URL into embeddable
// document chunks. All failures are soft: callers get an empty slice and
// decide at the request boundary whether that is an error.
package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/finquill/finchat/internal/domain/docmodel"
	"github.com/finquill/finchat/internal/metrics"
	"github.com/finquill/finchat/pkg/flog"
)

const browserUserAgent = "Mozilla/5.0 (X11; Windows; Windows x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/103.0.5060.114 Safari/537.36"

type Ingestor struct {
	client       *http.Client
	chunkSize    int
	chunkOverlap int
	clock        func() time.Time
	logger       *flog.Logger
}

func New(client *http.Client, chunkSize int, chunkOverlap int) *Ingestor {
	return &Ingestor{
		client:       client,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		clock:        time.Now,
		logger:       flog.NewLogger("Document Ingestion"),
	}
}

// IngestUpload processes raw uploaded bytes. The filename picks the
// extraction path and becomes the chunk source.
func (i *Ingestor) IngestUpload(ctx context.Context, filename string, content []byte) []docmodel.DocChunk {
	if len(content) == 0 {
		i.logger.Warn("Empty upload buffer", "filename", filename)
		return nil
	}

	tempPath, cleanup, err := i.stageTempFile(filename, content)
	if err != nil {
		i.logger.Error("Could not stage upload", "filename", filename, "error", err)
		return nil
	}
	defer cleanup()

	return i.process(tempPath, filename)
}

// IngestURL downloads a document and chunks it. Network errors, bad status
// codes and empty bodies all come back as an empty slice.
func (i *Ingestor) IngestURL(ctx context.Context, docURL string) []docmodel.DocChunk {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("pdf_download", time.Since(start)) }()

	i.logger.Info("Downloading document", "url", docURL)

	content, err := i.download(ctx, docURL)
	if err != nil {
		i.logger.Error("Download failed", "url", docURL, "error", err)
		return nil
	}
	if len(content) == 0 {
		i.logger.Warn("Zero byte document", "url", docURL)
		return nil
	}

	tempPath, cleanup, err := i.stageTempFile(fileNameFromURL(docURL), content)
	if err != nil {
		i.logger.Error("Could not stage download", "url", docURL, "error", err)
		return nil
	}
	defer cleanup()

	return i.process(tempPath, docURL)
}

func (i *Ingestor) download(ctx context.Context, docURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// stageTempFile writes content to a transient file and hands back a cleanup
// that always runs, success or not.
func (i *Ingestor) stageTempFile(filename string, content []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "finchat-*"+filepath.Ext(filename))
	if err != nil {
		return "", nil, err
	}

	cleanup := func() {
		if err := os.Remove(f.Name()); err != nil {
			i.logger.Error("Error removing temp file", "path", f.Name(), "error", err)
		}
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		cleanup()
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return f.Name(), cleanup, nil
}

func (i *Ingestor) process(tempPath string, source string) []docmodel.DocChunk {
	docType := docTypeFor(source)
	if docType == docmodel.ERR {
		i.logger.Error("Unsupported document type", "source", source)
		return nil
	}

	doc := docmodel.Document{
		Id:          uuid.New().String(),
		Source:      source,
		IngestedAt:  i.clock(),
		ContentType: docType,
	}

	pages, err := i.extractText(tempPath, docType)
	if err != nil {
		i.logger.Error("Error extracting document content", "source", source, "error", err)
		return nil
	}
	i.logger.Debug("Extracted document", "source", source, "pages", len(pages))

	chunks := i.chunkPages(doc, pages)
	i.logger.Info("Document chunked", "source", source, "chunks", len(chunks))
	return chunks
}

func (i *Ingestor) chunkPages(doc docmodel.Document, pages []rawPage) []docmodel.DocChunk {
	var all []docmodel.DocChunk

	for _, page := range pages {
		for n, text := range SplitText(page.Content, i.chunkSize, i.chunkOverlap) {
			all = append(all, docmodel.DocChunk{
				Doc:     doc,
				ChunkId: uuid.New().String(),
				Content: text,
				PageNum: page.Number,
				Order:   n,
			})
		}
	}
	return all
}

func fileNameFromURL(docURL string) string {
	parsed, err := url.Parse(docURL)
	if err != nil {
		return docURL
	}
	name := path.Base(parsed.Path)
	if name == "." || name == "/" {
		return "document.pdf"
	}
	return name
}
