package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/finquill/finchat/internal/api"
	"github.com/finquill/finchat/internal/config"
	"github.com/finquill/finchat/pkg/flog"
)

func (h *Handler) writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		h.logger.Error("Error encoding response", "error", err)
	}
}

func (h *Handler) WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, message string) {
	h.writeJsonResponse(w, httpCode, api.ErrorResponse{Id: id, Code: httpCode, Message: message})
}

// requestLogger scopes the handler logger to the request's trace id.
func (h *Handler) requestLogger(r *http.Request) *flog.Logger {
	if trace, ok := r.Context().Value(config.TRACE_ID_KEY).(string); ok && trace != "" {
		return h.logger.With("traceId", trace)
	}
	return h.logger
}

func (h *Handler) validateContext(r *http.Request) bool {
	if err := r.Context().Err(); err != nil {
		h.requestLogger(r).Warn("context error", "error", err, "IP", r.RemoteAddr)
		return false
	}
	return true
}
