package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mmynk/contactbook/internal/models"
	"github.com/mmynk/contactbook/internal/reconcile"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`

	// Summary reports what an aborted import committed before failing.
	Summary *reconcile.Summary `json:"summary,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps err onto a status code. Storage failures are checked
// before rejections since they may wrap one.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := errorStatus(r, err)
	writeJSON(w, status, resp)
}

// writeImportError is writeError for imports that may have committed
// records before failing.
func writeImportError(w http.ResponseWriter, r *http.Request, summary *reconcile.Summary, err error) {
	status, resp := errorStatus(r, err)
	resp.Summary = summary
	writeJSON(w, status, resp)
}

func errorStatus(r *http.Request, err error) (int, errorResponse) {
	var (
		se  *models.StorageError
		ve  *models.ValidationError
		pe  *models.ParseError
		dup *models.DuplicateKeyError
	)

	status := http.StatusInternalServerError
	resp := errorResponse{Error: err.Error()}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	case errors.As(err, &se):
	case errors.As(err, &ve):
		status = http.StatusBadRequest
		resp.Field = ve.Field
	case errors.As(err, &pe):
		status = http.StatusBadRequest
	case errors.As(err, &dup):
		status = http.StatusConflict
		resp.Field = dup.Field
	case errors.Is(err, models.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		slog.Error("Request error", "method", r.Method, "path", r.URL.Path, "error", err)
		resp.Error = "internal error"
	}
	return status, resp
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &models.ValidationError{Field: "body", Reason: "invalid JSON"}
	}
	return nil
}
