package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/assetflow-core/internal/apperr"
	"github.com/nerrad567/assetflow-core/internal/device"
	"github.com/nerrad567/assetflow-core/internal/directory"
)

const maxReasonLength = 500

// DeviceFinder looks up devices. Satisfied by *device.Registry.
type DeviceFinder interface {
	Find(ctx context.Context, id string) (*device.Device, error)
}

// EmployeeFinder looks up employees. Satisfied by *directory.Directory.
type EmployeeFinder interface {
	FindEmployee(ctx context.Context, id string) (*directory.Employee, error)
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

// Manager creates requests and persists their status.
type Manager struct {
	repo      Repository
	devices   DeviceFinder
	employees EmployeeFinder
	logger    Logger
	now       func() time.Time
}

// NewManager creates a request manager.
func NewManager(repo Repository, devices DeviceFinder, employees EmployeeFinder) *Manager {
	return &Manager{
		repo:      repo,
		devices:   devices,
		employees: employees,
		logger:    noopLogger{},
		now:       time.Now,
	}
}

// SetLogger sets the logger for the manager.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// Create stores a new pending request and returns its ID.
//
// Fails with ErrInvalidReason for a blank reason, and ErrUnknownDevice or
// ErrUnknownEmployee when a reference does not resolve.
func (m *Manager) Create(ctx context.Context, deviceID, employeeID, reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	switch {
	case reason == "":
		return "", fmt.Errorf("%w: reason is required", ErrInvalidReason)
	case len(reason) > maxReasonLength:
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidReason, maxReasonLength)
	}

	if _, err := m.devices.Find(ctx, deviceID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", fmt.Errorf("%w: %q", ErrUnknownDevice, deviceID)
		}
		return "", err
	}
	if _, err := m.employees.FindEmployee(ctx, employeeID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", fmt.Errorf("%w: %q", ErrUnknownEmployee, employeeID)
		}
		return "", err
	}

	now := m.now().UTC()
	req := &Request{
		ID:         uuid.NewString(),
		DeviceID:   deviceID,
		EmployeeID: employeeID,
		Reason:     reason,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.repo.Create(ctx, req); err != nil {
		return "", err
	}

	m.logger.Info("request created", "id", req.ID, "device_id", deviceID, "employee_id", employeeID)
	return req.ID, nil
}

// SetStatus persists a status without checking the transition.
func (m *Manager) SetStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := m.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	m.logger.Debug("request status set", "id", id, "status", status)
	return nil
}

// Find returns a request by ID.
func (m *Manager) Find(ctx context.Context, id string) (*Request, error) {
	return m.repo.GetByID(ctx, id)
}

// List returns all requests, newest first.
func (m *Manager) List(ctx context.Context) ([]Request, error) {
	return m.repo.List(ctx)
}

// FindByDevice returns every request for a device.
func (m *Manager) FindByDevice(ctx context.Context, deviceID string) ([]Request, error) {
	return m.repo.ListByDevice(ctx, deviceID)
}

// FindByEmployee returns every request made by an employee.
func (m *Manager) FindByEmployee(ctx context.Context, employeeID string) ([]Request, error) {
	return m.repo.ListByEmployee(ctx, employeeID)
}

// FindByStatus returns every request with the given status.
func (m *Manager) FindByStatus(ctx context.Context, status Status) ([]Request, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return m.repo.ListByStatus(ctx, status)
}

// SearchByReason returns requests whose reason contains substring.
func (m *Manager) SearchByReason(ctx context.Context, substring string) ([]Request, error) {
	return m.repo.SearchByReason(ctx, strings.TrimSpace(substring))
}

// Count returns the number of requests.
func (m *Manager) Count(ctx context.Context) (int, error) {
	return m.repo.Count(ctx)
}

// CountByStatus returns the number of requests with the given status.
func (m *Manager) CountByStatus(ctx context.Context, status Status) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return m.repo.CountByStatus(ctx, status)
}

// CountByEmployee returns the number of requests made by an employee.
func (m *Manager) CountByEmployee(ctx context.Context, employeeID string) (int, error) {
	return m.repo.CountByEmployee(ctx, employeeID)
}

// CountByDevice returns the number of requests ever made for a device.
func (m *Manager) CountByDevice(ctx context.Context, deviceID string) (int, error) {
	return m.repo.CountByDevice(ctx, deviceID)
}
