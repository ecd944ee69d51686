package api

import (
	"net/http"
	"strconv"

	"github.com/panelworks/panel-core/internal/pel"
)

// handleListPEL returns paginated platform event log entries.
//
// Query parameters:
//   - severity: filter by severity (informational, predictive, unrecoverable, ...)
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListPEL(w http.ResponseWriter, r *http.Request) {
	if s.pelRepo == nil {
		writeServiceUnavailable(w, "event log storage not configured")
		return
	}

	q := r.URL.Query()
	filter := pel.Filter{
		Severity: q.Get("severity"),
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	result, err := s.pelRepo.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list event log entries", "error", err)
		writeInternalError(w, "failed to list event log entries")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
