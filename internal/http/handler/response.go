package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/jaekwang-park/taskboard/internal/middleware"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request. Detail repeats the
// message for clients that only read a top-level detail field.
type ErrorResponse struct {
	Error  ErrorBody `json:"error"`
	Detail string    `json:"detail"`
}

// MessageResponse acknowledges a request that has no resource to return.
type MessageResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode response",
			"error", err, "path", r.URL.Path, "request_id", middleware.RequestID(r.Context()))
	}
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	WriteJSON(w, r, status, ErrorResponse{
		Error:  ErrorBody{Code: code, Message: message},
		Detail: message,
	})
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	WriteJSON(w, r, status, MessageResponse{Message: message})
}
