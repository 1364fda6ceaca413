package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finquill/finchat/internal/answer"
	"github.com/finquill/finchat/internal/api"
	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/internal/domain/docmodel"
	"github.com/finquill/finchat/internal/fiscal"
	"github.com/finquill/finchat/internal/loader"
	"github.com/finquill/finchat/internal/qa"
	"github.com/finquill/finchat/pkg/flog"
)

func init() {
	flog.Init(false)
}

type mockQAService struct {
	askFunc func(ctx context.Context, q qa.Question) (answer.Answer, error)
}

func (m *mockQAService) Ask(ctx context.Context, q qa.Question) (answer.Answer, error) {
	return m.askFunc(ctx, q)
}

type mockSearch struct {
	urls []string
}

func (m *mockSearch) FindDocuments(context.Context, []string, fiscal.Quarter) []string {
	return m.urls
}

type mockIngestor struct {
	chunks []docmodel.DocChunk
}

func (m *mockIngestor) IngestURL(context.Context, string) []docmodel.DocChunk { return m.chunks }
func (m *mockIngestor) IngestUpload(context.Context, string, []byte) []docmodel.DocChunk {
	return m.chunks
}

type mockPersister struct {
	err error
}

func (m *mockPersister) Persist(context.Context, string, []docmodel.DocChunk) error { return m.err }

func newTestHandler(svc qa.Service, ld *loader.Service) *Handler {
	if ld == nil {
		ld = loader.New(&mockSearch{}, &mockIngestor{}, &mockPersister{})
	}
	return New(svc, ld)
}

func TestAskHandlerTextAnswer(t *testing.T) {
	var captured qa.Question
	svc := &mockQAService{
		askFunc: func(_ context.Context, q qa.Question) (answer.Answer, error) {
			captured = q
			return answer.Answer{Kind: answer.KindText, Text: "revenue grew 12%"}, nil
		},
	}
	h := newTestHandler(svc, nil)

	body := `{"text": "how did revenue grow?", "ticker": "aapl"}`
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.AskHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, captured.ContextAware, "context_aware should default to true")
	assert.Equal(t, "AAPL", captured.Ticker)

	var resp api.AskResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "revenue grew 12%", resp.Response)
}

func TestAskHandlerStructuredAnswer(t *testing.T) {
	svc := &mockQAService{
		askFunc: func(context.Context, qa.Question) (answer.Answer, error) {
			return answer.Answer{
				Kind: answer.KindStructured,
				Data: map[string]any{"revenue": "1B"},
			}, nil
		},
	}
	h := newTestHandler(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"text": "tabulate"}`))
	rec := httptest.NewRecorder()

	h.AskHandler(rec, req)

	var resp struct {
		Response map[string]any `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "1B", resp.Response["revenue"])
}

func TestAskHandlerRejectsEmptyQuestion(t *testing.T) {
	h := newTestHandler(&mockQAService{
		askFunc: func(context.Context, qa.Question) (answer.Answer, error) {
			t.Fatal("service should not be called")
			return answer.Answer{}, nil
		},
	}, nil)

	for _, body := range []string{`{"text": "  "}`, `{}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.AskHandler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestAskHandlerContextAwareFalse(t *testing.T) {
	var captured qa.Question
	h := newTestHandler(&mockQAService{
		askFunc: func(_ context.Context, q qa.Question) (answer.Answer, error) {
			captured = q
			return answer.Answer{Kind: answer.KindText, Text: "ok"}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"text": "q", "context_aware": false}`))
	rec := httptest.NewRecorder()

	h.AskHandler(rec, req)

	assert.False(t, captured.ContextAware)
}

func TestAskHandlerServiceFailure(t *testing.T) {
	h := newTestHandler(&mockQAService{
		askFunc: func(context.Context, qa.Question) (answer.Answer, error) {
			return answer.Answer{}, errors.New("llm down")
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"text": "q"}`))
	rec := httptest.NewRecorder()

	h.AskHandler(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func multipartUpload(t *testing.T, field string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadPDFHandlerHappyPath(t *testing.T) {
	ld := loader.New(&mockSearch{}, &mockIngestor{chunks: []docmodel.DocChunk{
		{Content: "a"}, {Content: "b"}, {Content: "c"},
	}}, &mockPersister{})
	h := newTestHandler(&mockQAService{}, ld)

	body, contentType := multipartUpload(t, "document", "report.pdf", []byte("%PDF-1.4 data"))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadPDFHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp api.UploadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Chunks)
}

func TestUploadPDFHandlerRejectsNonPDF(t *testing.T) {
	h := newTestHandler(&mockQAService{}, nil)

	body, contentType := multipartUpload(t, "document", "notes.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadPDFHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPDFHandlerRejectsEmptyFile(t *testing.T) {
	h := newTestHandler(&mockQAService{}, nil)

	body, contentType := multipartUpload(t, "document", "empty.pdf", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadPDFHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPDFHandlerMissingFile(t *testing.T) {
	h := newTestHandler(&mockQAService{}, nil)

	body, contentType := multipartUpload(t, "wrong_field", "report.pdf", []byte("%PDF"))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadPDFHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadPDFHandlerIngestionFailure(t *testing.T) {
	ld := loader.New(&mockSearch{}, &mockIngestor{chunks: nil}, &mockPersister{})
	h := newTestHandler(&mockQAService{}, ld)

	body, contentType := multipartUpload(t, "document", "broken.pdf", []byte("junk bytes"))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.UploadPDFHandler(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAddTickerContextHandler(t *testing.T) {
	ld := loader.New(
		&mockSearch{urls: []string{"https://x.com/aapl-q1.pdf"}},
		&mockIngestor{chunks: []docmodel.DocChunk{{Content: "c"}}},
		&mockPersister{},
	)
	h := newTestHandler(&mockQAService{}, ld)

	req := httptest.NewRequest(http.MethodPost, "/add-ticker-context", strings.NewReader(`{"tickers": [" aapl "]}`))
	rec := httptest.NewRecorder()

	h.AddTickerContextHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp api.TickerContextResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"https://x.com/aapl-q1.pdf"}, resp.Documents)
}

func TestAddTickerContextHandlerRejectsEmptyTickers(t *testing.T) {
	h := newTestHandler(&mockQAService{}, nil)

	for _, body := range []string{`{"tickers": []}`, `{"tickers": ["  "]}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/add-ticker-context", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.AddTickerContextHandler(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestHandlerLogsCarryTraceId(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	h := newTestHandler(&mockQAService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("not json"))
	req = req.WithContext(context.WithValue(req.Context(), config.TRACE_ID_KEY, "trace-1234"))
	rec := httptest.NewRecorder()

	h.AskHandler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, buf.String(), "trace-1234")
}

func TestHealthHandler(t *testing.T) {
	h := newTestHandler(&mockQAService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.HealthHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
