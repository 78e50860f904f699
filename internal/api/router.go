package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.traceMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Every route requires the shared access key, the liveness ping
	// included: an unauthenticated probe learns nothing about this host.
	r.Group(func(r chi.Router) {
		r.Use(s.accessKeyMiddleware)

		r.Get("/ping", s.handlePing)
		r.Get("/status", s.handleStatus)

		r.Route("/sensors", func(r chi.Router) {
			r.Get("/", s.handleSensorSeries)
			r.Get("/current", s.handleSensorCurrent)
		})
	})

	return r
}

// handlePing answers the liveness probe.
func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeData(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
