package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jaekwang-park/taskboard/internal/cognito"
	"github.com/jaekwang-park/taskboard/internal/middleware"
	"github.com/jaekwang-park/taskboard/internal/service"
)

// handleServiceError maps service and cognito errors to the error envelope.
// Internal details are logged, never returned.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		WriteError(w, r, http.StatusNotFound, "NOT_FOUND", "Task not found")
	case errors.Is(err, service.ErrInvalidInput):
		WriteError(w, r, http.StatusBadRequest, "INVALID_INPUT", inputMessage(err))
	case errors.Is(err, service.ErrConflict):
		WriteError(w, r, http.StatusBadRequest, "USERNAME_TAKEN", "Username already exists")
	case errors.Is(err, service.ErrUnauthorized):
		WriteError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Incorrect username or password")
	default:
		if info, ok := cognito.LookupError(err); ok {
			slog.WarnContext(r.Context(), "credential provider error",
				"code", info.Code, "error", err, "request_id", middleware.RequestID(r.Context()))
			WriteError(w, r, info.Status, info.Code, http.StatusText(info.Status))
			return
		}
		slog.ErrorContext(r.Context(), "internal error",
			"error", err, "request_id", middleware.RequestID(r.Context()))
		WriteError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

// inputMessage strips the sentinel prefix from an ErrInvalidInput chain.
func inputMessage(err error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, service.ErrInvalidInput.Error()+": "); ok {
		return rest
	}
	return msg
}
