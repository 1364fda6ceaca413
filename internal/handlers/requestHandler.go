package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/finquill/finchat/internal/api"
	"github.com/finquill/finchat/internal/loader"
	"github.com/finquill/finchat/internal/qa"
	"github.com/finquill/finchat/pkg/flog"
)

type Handler struct {
	qaService qa.Service
	loader    *loader.Service
	logger    *flog.Logger
}

func New(qaService qa.Service, loaderService *loader.Service) *Handler {
	return &Handler{
		qaService: qaService,
		loader:    loaderService,
		logger:    flog.NewLogger("RequestHandler"),
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// AskHandler godoc
// @Summary      Ask a financial question
// @Description  Answers a question, optionally grounded in previously ingested documents. A ticker hint pulls that company's latest filings in first.
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        request  body      api.AskRequest  true  "Question, optional context flag and ticker"
// @Success      200      {object}  api.AskResponse "Text or structured answer"
// @Failure      400      {object}  api.ErrorResponse "Invalid request data"
// @Failure      500      {object}  api.ErrorResponse "Generation failure"
// @Router       /ask [post]
func (h *Handler) AskHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	logger := h.requestLogger(r)

	var requestData api.AskRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logger.Error("Couldn't close the ask handler reader", "error", err)
		}
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Text) == "" {
		logger.Warn("Bad Ask Request", "error", err)
		h.WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
		return
	}

	contextAware := true
	if requestData.ContextAware != nil {
		contextAware = *requestData.ContextAware
	}

	result, err := h.qaService.Ask(r.Context(), qa.Question{
		Text:         requestData.Text,
		ContextAware: contextAware,
		Ticker:       strings.ToUpper(strings.TrimSpace(requestData.Ticker)),
	})
	if err != nil {
		logger.Error("Question answering failed", "error", err)
		h.WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not generate an answer")
		return
	}

	h.writeJsonResponse(w, http.StatusOK, api.AskResponse{Response: result.Payload()})
}

// UploadPDFHandler godoc
// @Summary      Upload a PDF for ingestion
// @Description  Receives a PDF via multipart/form-data, chunks it and writes it to the document's own vector index.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        document  formData  file  true  "The PDF file to upload"
// @Success      200  {object}  api.UploadResponse  "Chunk count for the ingested document"
// @Failure      400  {object}  api.ErrorResponse   "Missing file, wrong type or empty document"
// @Failure      500  {object}  api.ErrorResponse   "Storage or embedding error"
// @Router       /upload-pdf [post]
func (h *Handler) UploadPDFHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}

	const maxUploadSize = 32 << 20 //32mb
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		h.WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	if !strings.EqualFold(filepath.Ext(fileMetadata.Filename), ".pdf") {
		h.WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "Only PDF uploads are accepted")
		return
	}

	content, err := io.ReadAll(fileReader)
	if err != nil {
		h.WriteErrorResponse(w, http.StatusInternalServerError, fileMetadata.Filename, "Read error")
		return
	}
	if len(content) == 0 {
		h.WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "Empty document")
		return
	}

	chunks, err := h.loader.IngestUpload(r.Context(), fileMetadata.Filename, content)
	if err != nil {
		h.requestLogger(r).Error("Upload ingestion failed", "filename", fileMetadata.Filename, "error", err)
		h.WriteErrorResponse(w, http.StatusInternalServerError, fileMetadata.Filename, "Could not ingest document")
		return
	}

	h.writeJsonResponse(w, http.StatusOK, api.UploadResponse{Message: "document ingested", Chunks: chunks})
}

// AddTickerContextHandler godoc
// @Summary      Load context for stock tickers
// @Description  Searches the web for the latest quarterly documents of the given tickers and ingests each one found.
// @Tags         Ingestion
// @Accept       json
// @Produce      json
// @Param        request  body      api.TickerContextRequest   true  "Tickers to load documents for"
// @Success      200      {object}  api.TickerContextResponse  "URLs of the ingested documents"
// @Failure      400      {object}  api.ErrorResponse          "No tickers given"
// @Router       /add-ticker-context [post]
func (h *Handler) AddTickerContextHandler(w http.ResponseWriter, r *http.Request) {
	if !h.validateContext(r) {
		return
	}
	logger := h.requestLogger(r)

	var requestData api.TickerContextRequest
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			logger.Error("Couldn't close the ticker handler reader", "error", err)
		}
	}(r.Body)

	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || len(requestData.Tickers) == 0 {
		logger.Warn("Bad Ticker Context Request", "error", err)
		h.WriteErrorResponse(w, http.StatusBadRequest, "", "At least one ticker is required")
		return
	}

	tickers := make([]string, 0, len(requestData.Tickers))
	for _, t := range requestData.Tickers {
		if trimmed := strings.ToUpper(strings.TrimSpace(t)); trimmed != "" {
			tickers = append(tickers, trimmed)
		}
	}
	if len(tickers) == 0 {
		h.WriteErrorResponse(w, http.StatusBadRequest, "", "At least one ticker is required")
		return
	}

	loaded := h.loader.LoadTickerContext(r.Context(), tickers)
	h.writeJsonResponse(w, http.StatusOK, api.TickerContextResponse{Documents: loaded})
}
