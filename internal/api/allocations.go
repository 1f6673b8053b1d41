package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/assetflow-core/internal/allocation"
)

// handleListAllocations returns allocations, newest first.
//
// Query parameters:
//   - state: active or returned (default all)
//   - employee_id: only this employee's allocations
func (s *Server) handleListAllocations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state := allocation.State(r.URL.Query().Get("state"))
	employeeID := r.URL.Query().Get("employee_id")

	var (
		allocs []allocation.Allocation
		err    error
	)
	switch state {
	case allocation.StateActive:
		if employeeID != "" {
			allocs, err = s.allocations.FindActiveByEmployee(ctx, employeeID)
		} else {
			allocs, err = s.allocations.FindActive(ctx)
		}
	case allocation.StateReturned:
		allocs, err = s.allocations.FindReturned(ctx)
	case allocation.StateAll:
		allocs, err = s.allocations.List(ctx)
	default:
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "state must be active or returned")
		return
	}
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	if employeeID != "" {
		out := allocs[:0]
		for _, a := range allocs {
			if a.EmployeeID == employeeID {
				out = append(out, a)
			}
		}
		allocs = out
	}
	writeJSON(w, http.StatusOK, map[string]any{"allocations": allocs, "count": len(allocs)})
}

func (s *Server) handleGetAllocation(w http.ResponseWriter, r *http.Request) {
	a, err := s.allocations.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
