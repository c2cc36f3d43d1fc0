package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	flog "finanzas/internal/log"
	"finanzas/internal/services"
	"finanzas/internal/store"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode response", "component", "http", "error", err)
	}
}

// statusFor maps the store and editor error taxonomy to HTTP.
func statusFor(err error) int {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotConfirmed):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	if status >= http.StatusInternalServerError {
		s.logger.LogError(r.Context(), "Request failed", err, flog.ComponentHTTP, op, nil)
		if status == http.StatusInternalServerError {
			body.Error = "internal error"
		}
	}
	writeJSON(w, status, body)
}

// decodeJSON reads at most maxBodyBytes and rejects unknown fields.
func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &services.ValidationError{Field: "body", Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &services.ValidationError{Field: "body", Err: errors.New("unexpected data after JSON object")}
	}
	return nil
}

// sanitizeInput trims and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
