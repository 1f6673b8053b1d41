package allocation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/assetflow-core/internal/request"
)

// RequestFinder looks up requests. Satisfied by *request.Manager.
type RequestFinder interface {
	Find(ctx context.Context, id string) (*request.Request, error)
}

// Logger is the logging interface used by the Manager.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Manager creates allocations and records returns.
type Manager struct {
	repo     Repository
	requests RequestFinder
	logger   Logger
	now      func() time.Time
}

// NewManager creates an allocation manager.
func NewManager(repo Repository, requests RequestFinder) *Manager {
	return &Manager{
		repo:     repo,
		requests: requests,
		logger:   noopLogger{},
		now:      time.Now,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Create opens an allocation for an approved request and returns its ID.
//
// The caller is expected to have checked the request status and the device.
// Create still refuses with ErrDeviceAllocated when the device already has an
// active allocation, whether seen up front or reported by storage.
func (m *Manager) Create(ctx context.Context, requestID, issuedBy string) (string, error) {
	issuedBy = strings.TrimSpace(issuedBy)
	if issuedBy == "" {
		return "", ErrInvalidActor
	}

	req, err := m.requests.Find(ctx, requestID)
	if err != nil {
		return "", err
	}

	busy, err := m.repo.ExistsActiveForDevice(ctx, req.DeviceID)
	if err != nil {
		return "", err
	}
	if busy {
		return "", fmt.Errorf("%w: device %s", ErrDeviceAllocated, req.DeviceID)
	}

	a := &Allocation{
		ID:           uuid.NewString(),
		RequestID:    req.ID,
		DeviceID:     req.DeviceID,
		EmployeeID:   req.EmployeeID,
		ReturnStatus: ReturnStatusNotReturned,
		IssuedBy:     issuedBy,
		AllocatedAt:  m.now().UTC(),
	}
	if err := m.repo.Create(ctx, a); err != nil {
		return "", err
	}

	m.logger.Info("allocation created",
		"id", a.ID,
		"request_id", a.RequestID,
		"device_id", a.DeviceID,
		"employee_id", a.EmployeeID,
	)
	return a.ID, nil
}

// RecordReturn closes an active allocation.
func (m *Manager) RecordReturn(ctx context.Context, id string, condition Condition, note, receivedBy string) error {
	if !condition.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCondition, condition)
	}
	receivedBy = strings.TrimSpace(receivedBy)
	if receivedBy == "" {
		return ErrInvalidActor
	}

	if err := m.repo.MarkReturned(ctx, id, condition, strings.TrimSpace(note), receivedBy, m.now().UTC()); err != nil {
		return err
	}
	m.logger.Info("allocation returned", "id", id, "condition", condition)
	return nil
}

// IsDeviceBeingAllocated reports whether the device has an active allocation.
func (m *Manager) IsDeviceBeingAllocated(ctx context.Context, deviceID string) (bool, error) {
	return m.repo.ExistsActiveForDevice(ctx, deviceID)
}

// FindCurrentForDevice returns the device's active allocation, if any.
func (m *Manager) FindCurrentForDevice(ctx context.Context, deviceID string) (*Allocation, bool, error) {
	return optional(m.repo.GetActiveByDevice(ctx, deviceID))
}

// FindByRequest returns the allocation created for a request, if any.
func (m *Manager) FindByRequest(ctx context.Context, requestID string) (*Allocation, bool, error) {
	return optional(m.repo.GetByRequest(ctx, requestID))
}

// Find returns an allocation by ID.
func (m *Manager) Find(ctx context.Context, id string) (*Allocation, error) {
	return m.repo.GetByID(ctx, id)
}

// List returns all allocations, newest first.
func (m *Manager) List(ctx context.Context) ([]Allocation, error) {
	return m.repo.List(ctx, StateAll)
}

// FindActive returns every allocation not yet returned.
func (m *Manager) FindActive(ctx context.Context) ([]Allocation, error) {
	return m.repo.List(ctx, StateActive)
}

// FindReturned returns every returned allocation.
func (m *Manager) FindReturned(ctx context.Context) ([]Allocation, error) {
	return m.repo.List(ctx, StateReturned)
}

// FindActiveByEmployee returns the devices an employee currently holds.
func (m *Manager) FindActiveByEmployee(ctx context.Context, employeeID string) ([]Allocation, error) {
	return m.repo.ListActiveByEmployee(ctx, employeeID)
}

// Count returns the number of allocations.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.repo.Count(ctx, StateAll)
}

// CountActive returns the number of allocations not yet returned.
func (m *Manager) CountActive(ctx context.Context) (int, error) {
	return m.repo.Count(ctx, StateActive)
}

// CountReturned returns the number of returned allocations.
func (m *Manager) CountReturned(ctx context.Context) (int, error) {
	return m.repo.Count(ctx, StateReturned)
}

// Cancel removes an allocation whose approval is being rolled back.
// Not for general use: allocations are otherwise kept as history.
func (m *Manager) Cancel(ctx context.Context, id string) error {
	if err := m.repo.Delete(ctx, id); err != nil {
		return err
	}
	m.logger.Warn("allocation cancelled", "id", id)
	return nil
}

// Reopen undoes RecordReturn for a return that is being rolled back.
func (m *Manager) Reopen(ctx context.Context, id string) error {
	if err := m.repo.Reopen(ctx, id); err != nil {
		return err
	}
	m.logger.Warn("allocation reopened", "id", id)
	return nil
}

func optional(a *Allocation, err error) (*Allocation, bool, error) {
	if err != nil {
		if errors.Is(err, ErrAllocationNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return a, true, nil
}
