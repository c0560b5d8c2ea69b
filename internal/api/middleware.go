package api

import (
	"errors"
	"net/http"
	"time"

	"beconforms/internal/model"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, r *http.Request, code int, errCode, message string, log *zap.Logger) {
	log.Error("API error", zap.String("code", errCode), zap.String("message", message))

	render.Status(r, code)
	render.JSON(w, r, ErrorResponse{
		Error:   errCode,
		Code:    errCode,
		Message: message,
	})
}

// WriteTypedError maps the error taxonomy onto HTTP statuses so clients can
// branch: not-found vs auth-required vs validation vs incomplete reorder.
func WriteTypedError(w http.ResponseWriter, r *http.Request, err error, log *zap.Logger) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, ErrorResponse{
			Error:   "validation_failed",
			Code:    "validation_failed",
			Message: verr.Error(),
			Field:   verr.FieldID,
		})
	case errors.Is(err, model.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "not_found", err.Error(), log)
	case errors.Is(err, model.ErrAuthRequired):
		WriteError(w, r, http.StatusUnauthorized, "auth_required", err.Error(), log)
	case errors.Is(err, model.ErrIncompleteReorder):
		WriteError(w, r, http.StatusConflict, "incomplete_reorder", err.Error(), log)
	default:
		WriteError(w, r, http.StatusInternalServerError, "internal_error", err.Error(), log)
	}
}

// RequestLogger logs HTTP requests and responses
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// WebSocket upgrades need direct access to the ResponseWriter
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
