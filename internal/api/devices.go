package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/assetflow-core/internal/allocation"
	"github.com/nerrad567/assetflow-core/internal/audit"
	"github.com/nerrad567/assetflow-core/internal/device"
)

// handleListDevices returns devices, with optional query filters.
//
// Query parameters (combinable):
//   - status: available, in_use or maintenance
//   - type: exact device type
//   - name: case-insensitive substring of the name
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := device.Status(q.Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, "unknown device status: "+string(status))
		return
	}

	devices, err := s.listDevices(r.Context(), status, q.Get("type"), q.Get("name"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// listDevices queries by the first filter given and applies the rest in memory.
func (s *Server) listDevices(ctx context.Context, status device.Status, deviceType, name string) ([]device.Device, error) {
	var (
		devices []device.Device
		err     error
	)
	switch {
	case status != "":
		devices, err = s.devices.ListByStatus(ctx, status)
	case deviceType != "":
		devices, err = s.devices.ListByType(ctx, deviceType)
	case name != "":
		devices, err = s.devices.ListByName(ctx, name)
	default:
		devices, err = s.devices.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(name)
	out := devices[:0]
	for _, d := range devices {
		if status != "" && d.Status != status {
			continue
		}
		if deviceType != "" && d.Type != deviceType {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(d.Name), needle) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	dev, err := s.devices.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dev)
}

// handleCreateDevice registers a new device. New devices are available.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var dev device.Device
	if err := decodeJSON(r, &dev); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	dev.ID = ""
	dev.Status = ""

	id, err := s.devices.Register(r.Context(), &dev)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "create", audit.EntityDevice, id, map[string]any{
		"name": dev.Name,
		"type": dev.Type,
	})
	writeJSON(w, http.StatusCreated, dev)
}

// handleUpdateDevice partially updates a device's descriptive fields.
// Status changes go through PUT /devices/{id}/status.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := s.devices.Find(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	// Decode partial update onto existing device
	if err := decodeJSON(r, existing); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	existing.ID = id

	if err := s.devices.Update(r.Context(), existing); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	s.recordAudit(r, "update", audit.EntityDevice, id, nil)
	writeJSON(w, http.StatusOK, existing)
}

// handleRemoveDevice deletes a device that has never been requested.
func (s *Server) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	if err := s.coordinator.RemoveDevice(r.Context(), chi.URLParam(r, "id"), actor); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeviceStats returns device counts by status.
func (s *Server) handleDeviceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.devices.Stats(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// statusChange is the body of PUT /devices/{id}/status.
type statusChange struct {
	Status device.Status `json:"status"`
}

// handleChangeDeviceStatus moves a device between available and maintenance.
func (s *Server) handleChangeDeviceStatus(w http.ResponseWriter, r *http.Request) {
	var body statusChange
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	actor, _ := actorFromContext(r.Context())
	res, err := s.coordinator.ChangeDeviceStatus(r.Context(), chi.URLParam(r, "id"), body.Status, actor)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleGetDeviceAllocation returns the device's active allocation, or 404
// when the device is not out.
func (s *Server) handleGetDeviceAllocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.devices.Find(r.Context(), id); err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	alloc, ok, err := s.allocations.FindCurrentForDevice(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !ok {
		writeNotFound(w, "device has no active allocation")
		return
	}
	writeJSON(w, http.StatusOK, alloc)
}

// returnBody is the body of POST /devices/{id}/return.
type returnBody struct {
	Condition allocation.Condition `json:"condition"`
	Note      string               `json:"note,omitempty"`
}

// handleReturnDevice records a device coming back and frees or parks it
// according to its condition.
func (s *Server) handleReturnDevice(w http.ResponseWriter, r *http.Request) {
	var body returnBody
	if err := decodeJSON(r, &body); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	actor, _ := actorFromContext(r.Context())
	res, err := s.coordinator.ReturnDevice(r.Context(), chi.URLParam(r, "id"), body.Condition, body.Note, actor)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
