package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/assetflow-core/internal/audit"
)

// handleListAudit returns a page of audit trail entries, newest first.
//
// Query parameters:
//   - action: filter by action (create, update, delete, request.approved, device.returned, ...)
//   - entity_type: device, request, department or employee
//   - entity_id: filter by specific entity ID
//   - user_id: filter by actor
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotFound(w, "audit trail not configured")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:     q.Get("action"),
		EntityType: q.Get("entity_type"),
		EntityID:   q.Get("entity_id"),
		UserID:     q.Get("user_id"),
	}

	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	page, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
