package api

import (
	"errors"
	"net/http"

	"github.com/nerrad567/hearth-core/internal/infrastructure/cache"
	"github.com/nerrad567/hearth-core/internal/reading"
)

// handleSensorSeries serves aggregated reading buckets.
//
// GET /sensors?durationSpan=hour|day|week|month
//
// Buckets are returned oldest first — chart clients plot the slice as-is.
// Any unrecognised durationSpan value, numeric strings included, falls
// back to the hour span; every caller gets an answer.
func (s *Server) handleSensorSeries(w http.ResponseWriter, r *http.Request) {
	span := reading.ParseSpan(r.URL.Query().Get("durationSpan"))

	buckets, err := s.readings.BucketSeries(r.Context(), span)
	if err != nil {
		s.logger.Error("bucket series query failed", "span", span.Keyword, "error", err)
		writeInternalError(w, "failed to query readings")
		return
	}

	writeData(w, http.StatusOK, buckets)
}

// handleSensorCurrent serves the most recent reading.
//
// GET /sensors/current
//
// Answers from the cache when one is configured and warm; otherwise falls
// back to the store. No reading within the freshness window is 404 — the
// collector is silent and the caller should not treat stale air as current.
func (s *Server) handleSensorCurrent(w http.ResponseWriter, r *http.Request) {
	if s.cache != nil {
		rd, err := s.cache.Latest(r.Context())
		switch {
		case err == nil:
			writeData(w, http.StatusOK, rd)
			return
		case !errors.Is(err, cache.ErrNoEntry):
			// Cache trouble is not fatal; fall through to the store.
			s.logger.Warn("latest-reading cache lookup failed", "error", err)
		}
	}

	rd, err := s.readings.Latest(r.Context())
	if errors.Is(err, reading.ErrNoReadings) {
		writeNotFound(w, "no recent reading")
		return
	}
	if err != nil {
		s.logger.Error("latest reading query failed", "error", err)
		writeInternalError(w, "failed to query readings")
		return
	}

	writeData(w, http.StatusOK, rd)
}
