package middleware

import "net/http"

// responseRecorder wraps http.ResponseWriter to capture the status code and
// byte count for access logging and metrics. The gateway has no streaming
// responses to preserve (SSE/WebSocket multiplexing is out of scope), so
// this only tracks what the logger and metrics middleware read.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
	bytes      int64
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseRecorder) WriteHeader(code int) {
	if !w.written {
		w.statusCode = code
		w.written = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

func (w *responseRecorder) StatusCode() int {
	return w.statusCode
}

func (w *responseRecorder) BytesWritten() int64 {
	return w.bytes
}
