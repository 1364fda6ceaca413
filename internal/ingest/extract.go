package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/domain/docmodel"
)

type rawPage struct {
	Number  int
	Content string
}

// docTypeFor classifies by extension. A bare path with no extension is
// treated as PDF: the search layer restricts queries to filetype:pdf and
// many filing URLs carry no suffix at all.
func docTypeFor(path string) docmodel.DocType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", "":
		return docmodel.PDF
	case ".docx", ".txt", ".rtf", ".odt":
		return docmodel.DOCX
	default:
		return docmodel.ERR
	}
}

func (i *Ingestor) extractText(path string, contentType docmodel.DocType) ([]rawPage, error) {
	switch contentType {
	case docmodel.PDF:
		return i.extractPDF(path)
	case docmodel.DOCX:
		return i.extractPlainDocument(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func (i *Ingestor) extractPDF(path string) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	i.logger.Debug("extractPDF", "pages", numPages)

	for n := 1; n <= numPages; n++ {
		page := f.Page(n)
		if page.V.IsNull() {
			continue
		}

		content, err := i.guardedPageText(page)
		if err != nil {
			// keep going, a single broken page should not sink the document
			i.logger.Error("Error parsing page content", "page", n, "error", err)
			continue
		}

		pages = append(pages, rawPage{Number: n, Content: content})
	}
	return pages, nil
}

// extractPlainDocument handles docx/txt/rtf/odt sources. cat gives back one
// string with no page boundaries, so everything lands on page 1.
func (i *Ingestor) extractPlainDocument(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document text: %w", err)
	}
	return []rawPage{{Number: 1, Content: text}}, nil
}

// guardedPageText runs the extraction on its own goroutine. Some malformed
// PDFs make the parser spin, the deadline converts that into a page skip.
func (i *Ingestor) guardedPageText(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()

	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PageExtractTimeout):
		return "", errors.New("page extraction timeout")
	}
}
