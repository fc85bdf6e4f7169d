package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/garagelink/internal/api/response"
	"github.com/kiranshivaraju/garagelink/internal/conversation"
	"github.com/kiranshivaraju/garagelink/internal/jobs"
)

// writeError maps a service error to its HTTP status and error code.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, jobs.ErrNotFound), errors.Is(err, conversation.ErrNotFound):
		response.Error(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, jobs.ErrInvalidTransition):
		response.Error(w, http.StatusConflict, "INVALID_TRANSITION", err.Error(), nil)
	case errors.Is(err, jobs.ErrValidation), errors.Is(err, conversation.ErrValidation):
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}
