package api

import (
	"net/http"
)

// recentCycleCount is how many journal entries the status endpoint shows.
const recentCycleCount = 10

// handleStatus reports collector and journal state for operators.
//
// GET /status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"version":     s.version,
		"instance_id": s.instanceID,
	}

	if s.collector != nil {
		saved, failed := s.collector.Stats()
		status["collector"] = map[string]uint64{
			"saved":  saved,
			"failed": failed,
		}
	}

	if s.journal != nil {
		counts, err := s.journal.Counts(r.Context())
		if err != nil {
			s.logger.Error("journal counts query failed", "error", err)
			writeInternalError(w, "failed to query poll journal")
			return
		}
		recent, err := s.journal.Recent(r.Context(), recentCycleCount)
		if err != nil {
			s.logger.Error("journal recent query failed", "error", err)
			writeInternalError(w, "failed to query poll journal")
			return
		}
		status["journal"] = map[string]any{
			"outcomes":      counts,
			"recent_cycles": recent,
		}
	}

	writeData(w, http.StatusOK, status)
}
