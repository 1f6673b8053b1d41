package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/assetflow-core/internal/audit"
	"github.com/nerrad567/assetflow-core/internal/request"
)

// requestFilter holds the query parameters of GET /requests.
type requestFilter struct {
	status     request.Status
	deviceID   string
	employeeID string
	query      string
}

func (f requestFilter) match(req *request.Request) bool {
	switch {
	case f.status != "" && req.Status != f.status:
		return false
	case f.deviceID != "" && req.DeviceID != f.deviceID:
		return false
	case f.employeeID != "" && req.EmployeeID != f.employeeID:
		return false
	case f.query != "" && !strings.Contains(strings.ToLower(req.Reason), strings.ToLower(f.query)):
		return false
	}
	return true
}

// handleListRequests returns requests, newest first.
//
// Query parameters (combinable):
//   - status: pending, approved, rejected or completed
//   - device_id, employee_id: exact references
//   - q: case-insensitive substring of the reason
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := requestFilter{
		status:     request.Status(q.Get("status")),
		deviceID:   q.Get("device_id"),
		employeeID: q.Get("employee_id"),
		query:      strings.TrimSpace(q.Get("q")),
	}
	if f.status != "" && !f.status.Valid() {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "unknown request status: "+string(f.status))
		return
	}

	reqs, err := s.listRequests(r.Context(), f)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": reqs, "count": len(reqs)})
}

func (s *Server) listRequests(ctx context.Context, f requestFilter) ([]request.Request, error) {
	var (
		reqs []request.Request
		err  error
	)
	switch {
	case f.deviceID != "":
		reqs, err = s.requests.FindByDevice(ctx, f.deviceID)
	case f.employeeID != "":
		reqs, err = s.requests.FindByEmployee(ctx, f.employeeID)
	case f.status != "":
		reqs, err = s.requests.FindByStatus(ctx, f.status)
	case f.query != "":
		reqs, err = s.requests.SearchByReason(ctx, f.query)
	default:
		reqs, err = s.requests.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := reqs[:0]
	for i := range reqs {
		if f.match(&reqs[i]) {
			out = append(out, reqs[i])
		}
	}
	return out, nil
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	req, err := s.requests.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// newRequest is the body of POST /requests.
type newRequest struct {
	DeviceID   string `json:"device_id"`
	EmployeeID string `json:"employee_id"`
	Reason     string `json:"reason"`
}

// handleCreateRequest files a pending request. The device's status is not
// checked here; availability is decided at approval.
func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var body newRequest
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	id, err := s.requests.Create(r.Context(), body.DeviceID, body.EmployeeID, body.Reason)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	req, err := s.requests.Find(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "create", audit.EntityRequest, id, map[string]any{
		"device_id":   req.DeviceID,
		"employee_id": req.EmployeeID,
	})
	writeJSON(w, http.StatusCreated, req)
}

// handleApproveRequest approves a pending request, allocating the device.
// 409 conflict when the device is already out or not available.
func (s *Server) handleApproveRequest(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	res, err := s.coordinator.Approve(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	res, err := s.coordinator.Reject(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
