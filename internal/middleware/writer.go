package middleware

import "net/http"

// trackingWriter records the response status and whether the response has
// started. Logging and Recovery share one per request.
type trackingWriter struct {
	http.ResponseWriter
	status  int
	started bool
}

// track reuses w when an outer middleware already wrapped it.
func track(w http.ResponseWriter) *trackingWriter {
	if tw, ok := w.(*trackingWriter); ok {
		return tw
	}
	return &trackingWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *trackingWriter) WriteHeader(code int) {
	if !w.started {
		w.status = code
		w.started = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.started = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
