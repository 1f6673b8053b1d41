package lifecycle

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/assetflow-core/internal/allocation"
	"github.com/nerrad567/assetflow-core/internal/device"
	"github.com/nerrad567/assetflow-core/internal/request"
)

// store is an in-memory implementation of all three collaborator interfaces.
// failOn* injects an error the next time the named write is attempted with
// the given target value.
type store struct {
	mu          sync.Mutex
	devices     map[string]*device.Device
	requests    map[string]*request.Request
	allocations map[string]*allocation.Allocation
	seq         int

	history map[string][]device.Status

	failDeviceStatus  map[device.Status]error
	failRequestStatus map[request.Status]error
	failCreate        error
	failCancel        error
}

func newStore() *store {
	return &store{
		devices:           make(map[string]*device.Device),
		requests:          make(map[string]*request.Request),
		allocations:       make(map[string]*allocation.Allocation),
		history:           make(map[string][]device.Status),
		failDeviceStatus:  make(map[device.Status]error),
		failRequestStatus: make(map[request.Status]error),
	}
}

func (s *store) addDevice(id string, status device.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[id] = &device.Device{ID: id, Name: id, Type: "laptop", Status: status}
	s.history[id] = []device.Status{status}
}

func (s *store) addRequest(id, deviceID, employeeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[id] = &request.Request{ID: id, DeviceID: deviceID, EmployeeID: employeeID,
		Reason: "test", Status: request.StatusPending}
}

func (s *store) deviceStatus(id string) device.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devices[id].Status
}

func (s *store) requestStatus(id string) request.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id].Status
}

func (s *store) activeFor(deviceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.allocations {
		if a.DeviceID == deviceID && a.Active() {
			n++
		}
	}
	return n
}

// devices

type fakeDevices struct{ *store }

func (f fakeDevices) Find(_ context.Context, id string) (*device.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.devices[id]
	if !ok {
		return nil, device.ErrDeviceNotFound
	}
	return d.Clone(), nil
}

func (f fakeDevices) UpdateStatus(_ context.Context, id string, status device.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failDeviceStatus[status]; err != nil {
		return err
	}
	d, ok := f.devices[id]
	if !ok {
		return device.ErrDeviceNotFound
	}
	d.Status = status
	f.history[id] = append(f.history[id], status)
	return nil
}

func (f fakeDevices) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.devices[id]; !ok {
		return device.ErrDeviceNotFound
	}
	delete(f.devices, id)
	return nil
}

// requests

type fakeRequests struct{ *store }

func (f fakeRequests) Find(_ context.Context, id string) (*request.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, request.ErrRequestNotFound
	}
	return r.Clone(), nil
}

func (f fakeRequests) SetStatus(_ context.Context, id string, status request.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failRequestStatus[status]; err != nil {
		return err
	}
	r, ok := f.requests[id]
	if !ok {
		return request.ErrRequestNotFound
	}
	r.Status = status
	return nil
}

func (f fakeRequests) CountByDevice(_ context.Context, deviceID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.DeviceID == deviceID {
			n++
		}
	}
	return n, nil
}

// allocations

type fakeAllocations struct{ *store }

func (f fakeAllocations) Create(_ context.Context, requestID, issuedBy string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return "", f.failCreate
	}
	r, ok := f.requests[requestID]
	if !ok {
		return "", request.ErrRequestNotFound
	}
	for _, a := range f.allocations {
		if a.DeviceID == r.DeviceID && a.Active() {
			return "", allocation.ErrDeviceAllocated
		}
	}
	f.seq++
	id := "alloc-" + strconv.Itoa(f.seq)
	f.allocations[id] = &allocation.Allocation{
		ID: id, RequestID: requestID, DeviceID: r.DeviceID, EmployeeID: r.EmployeeID,
		ReturnStatus: allocation.ReturnStatusNotReturned, IssuedBy: issuedBy, AllocatedAt: time.Now(),
	}
	return id, nil
}

func (f fakeAllocations) RecordReturn(_ context.Context, id string, cond allocation.Condition, note, receivedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.allocations[id]
	if !ok {
		return allocation.ErrAllocationNotFound
	}
	if !a.Active() {
		return allocation.ErrAlreadyReturned
	}
	now := time.Now()
	a.ReturnStatus = allocation.ReturnStatusReturned
	a.Condition = cond
	a.ReturnNote = note
	a.ReceivedBy = receivedBy
	a.ReturnedAt = &now
	return nil
}

func (f fakeAllocations) IsDeviceBeingAllocated(_ context.Context, deviceID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.allocations {
		if a.DeviceID == deviceID && a.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeAllocations) FindCurrentForDevice(_ context.Context, deviceID string) (*allocation.Allocation, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.allocations {
		if a.DeviceID == deviceID && a.Active() {
			return a.Clone(), true, nil
		}
	}
	return nil, false, nil
}

func (f fakeAllocations) Find(_ context.Context, id string) (*allocation.Allocation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.allocations[id]
	if !ok {
		return nil, allocation.ErrAllocationNotFound
	}
	return a.Clone(), nil
}

func (f fakeAllocations) Cancel(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCancel != nil {
		return f.failCancel
	}
	if _, ok := f.allocations[id]; !ok {
		return allocation.ErrAllocationNotFound
	}
	delete(f.allocations, id)
	return nil
}

func (f fakeAllocations) Reopen(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.allocations[id]
	if !ok {
		return allocation.ErrAllocationNotFound
	}
	if a.Active() {
		return allocation.ErrNotReturned
	}
	a.ReturnStatus = allocation.ReturnStatusNotReturned
	a.Condition = ""
	a.ReturnNote = ""
	a.ReceivedBy = ""
	a.ReturnedAt = nil
	return nil
}

// recorder collects notified events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
