package api

import "net/http"

// handleHealth reports liveness for the desktop shell's startup probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
