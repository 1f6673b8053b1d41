package api

import "net/http"

// handleReportSummary returns live inventory and usage counts.
func (s *Server) handleReportSummary(w http.ResponseWriter, r *http.Request) {
	if s.reporter == nil {
		writeNotFound(w, "reporting not configured")
		return
	}

	summary, err := s.reporter.Summary(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
