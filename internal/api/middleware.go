package api

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/nerrad567/hearth-core/internal/trace"
)

// maxRequestBodySize is the maximum allowed request body size (64 KB).
// Every endpoint here is a read; there is no legitimate large body.
const maxRequestBodySize = 1 << 16

// traceMiddleware attaches a Trace to each request.
//
// The call ID is propagated from the inbound Call-Trace-ID header when a
// sibling service set one, or generated fresh at this edge. Both trace
// headers are echoed on the response so callers can correlate.
func (s *Server) traceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t := trace.FromRequest(r, s.instanceID)
		t.SetHeaders(w.Header())
		next.ServeHTTP(w, r.WithContext(trace.NewContext(r.Context(), t)))
	})
}

// loggingMiddleware logs each HTTP request with method, path, status, and duration.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		t, _ := trace.FromContext(r.Context())
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"call_trace_id", t.Call,
		)
	})
}

// recoveryMiddleware catches panics in handlers and returns a 500 response.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.logger.Error("panic recovered in HTTP handler",
					"error", err,
					"method", r.Method,
					"path", r.URL.Path,
				)
				writeInternalError(w, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// bodySizeLimitMiddleware limits the size of incoming request bodies.
func (s *Server) bodySizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
		}
		next.ServeHTTP(w, r)
	})
}

// accessKeyMiddleware validates the federation's shared access key.
//
// The comparison is constant-time; a failed check answers 401 without
// revealing whether a key was close.
func (s *Server) accessKeyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		presented := r.Header.Get("Client-Access-Key")
		expected := s.secCfg.ClientAccessKey

		if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
			writeUnauthorized(w, "invalid or missing access key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
