package api

import "net/http"

// handleGetState returns the current panel state snapshot.
//
// The snapshot is the manager's authoritative view; it reflects every
// signal applied so far and never blocks on hardware.
func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Snapshot())
}
