package api

import (
	"net/http"
	"strconv"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// handleTelemetryEvents returns recent events from the telemetry archive,
// newest first.
func (s *Server) handleTelemetryEvents(w http.ResponseWriter, r *http.Request) {
	if s.telemetry == nil {
		writeBadRequest(w, "Telemetry archive not configured")
		return
	}

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	events, err := s.telemetry.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read telemetry events")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
