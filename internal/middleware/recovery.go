package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recovery turns a handler panic into a 500 error envelope. A panic after the
// response started is only logged. http.ErrAbortHandler is re-raised.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tw := track(w)
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				if p == http.ErrAbortHandler {
					panic(p)
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					"error", p,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", RequestID(r.Context()),
					"stack", string(debug.Stack()),
				)
				if tw.started {
					return
				}
				if err := writeError(tw, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"); err != nil {
					logger.ErrorContext(r.Context(), "failed to write recovery response", "error", err)
				}
			}()

			next.ServeHTTP(tw, r)
		})
	}
}
