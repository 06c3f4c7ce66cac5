package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stitchgrid/pkg/buildinfo"
	"github.com/matzehuels/stitchgrid/pkg/errors"
	"github.com/matzehuels/stitchgrid/pkg/observability"
)

// =============================================================================
// Responses
// =============================================================================

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorBody(code, message string) map[string]errorPayload {
	return map[string]errorPayload{"error": {Code: code, Message: message}}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError reports err with the status its code maps to. Uncoded errors
// and defects are logged, and only a generic message is returned for them.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"error", err,
			"request_id", middleware.GetReqID(r.Context()))
		msg = "internal error"
	}
	writeJSON(w, status, errorBody(string(code), msg))
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidImage,
		errors.ErrCodeCatalogParse, errors.ErrCodeEmptyCatalog:
		return http.StatusBadRequest
	case errors.ErrCodeFileNotFound, errors.ErrCodeCatalogNotFound, errors.ErrCodeThreadNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidState:
		return http.StatusConflict
	case errors.ErrCodeBusy:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// contentType is the media type of a format's artifact.
func contentType(format string) string {
	switch format {
	case "png", "ids", "key":
		return "image/png"
	case "svg":
		return "image/svg+xml"
	case "pdf":
		return "application/pdf"
	case "json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// =============================================================================
// Middleware
// =============================================================================

func serverHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", buildinfo.ServerHeader())
		next.ServeHTTP(w, r)
	})
}

// observe reports every request to the server hooks and logs it.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.Server()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d.Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
