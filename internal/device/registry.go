package device

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry owns Device records and their status field.
//
// Status is opaque here: the registry persists whatever valid status it is
// given and refuses unknown ids, but never decides whether a transition is
// legal. That belongs to the lifecycle coordinator.
//
// All public methods are safe for concurrent use; the registry holds no
// mutable state besides its collaborators.
type Registry struct {
	repo   Repository
	logger Logger
	now    func() time.Time
}

// NewRegistry creates a new device registry.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		logger: noopLogger{},
		now:    time.Now,
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Register validates and stores a new device, returning its ID.
//
// The device is assigned a fresh ID when none is set and defaults to
// StatusAvailable. Fails with a validation error for a blank name or type,
// and ErrDuplicateSerial when the serial number is already registered.
func (r *Registry) Register(ctx context.Context, d *Device) (string, error) {
	Normalize(d)
	if err := ValidateDevice(d); err != nil {
		return "", err
	}

	if d.SerialNumber != "" {
		exists, err := r.repo.ExistsBySerial(ctx, d.SerialNumber, "")
		if err != nil {
			return "", err
		}
		if exists {
			return "", ErrDuplicateSerial
		}
	}

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = StatusAvailable
	}
	now := r.now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	if err := r.repo.Create(ctx, d); err != nil {
		return "", err
	}

	r.logger.Info("device registered",
		"id", d.ID,
		"name", d.Name,
		"type", d.Type,
		"serial_number", d.SerialNumber,
	)
	return d.ID, nil
}

// Update changes a device's descriptive fields. The stored status is kept
// regardless of d.Status.
func (r *Registry) Update(ctx context.Context, d *Device) error {
	existing, err := r.repo.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}

	Normalize(d)
	d.Status = existing.Status
	if err := ValidateDevice(d); err != nil {
		return err
	}

	if d.SerialNumber != "" && d.SerialNumber != existing.SerialNumber {
		exists, err := r.repo.ExistsBySerial(ctx, d.SerialNumber, d.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateSerial
		}
	}

	d.CreatedAt = existing.CreatedAt
	d.UpdatedAt = r.now().UTC()
	if err := r.repo.Update(ctx, d); err != nil {
		return err
	}

	r.logger.Info("device updated", "id", d.ID)
	return nil
}

// UpdateStatus persists a new status for the device.
// Returns ErrDeviceNotFound for an unknown id.
func (r *Registry) UpdateStatus(ctx context.Context, id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	if err := r.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	r.logger.Debug("device status updated", "id", id, "status", status)
	return nil
}

// Delete removes a device record. Callers are responsible for checking that
// no allocation references it.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}
	r.logger.Info("device deleted", "id", id)
	return nil
}

// Find retrieves a device by ID.
// Returns ErrDeviceNotFound if the device does not exist.
func (r *Registry) Find(ctx context.Context, id string) (*Device, error) {
	return r.repo.GetByID(ctx, id)
}

// List retrieves all devices.
func (r *Registry) List(ctx context.Context) ([]Device, error) {
	return r.repo.List(ctx)
}

// ListByStatus retrieves all devices with the given status.
func (r *Registry) ListByStatus(ctx context.Context, status Status) ([]Device, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return r.repo.ListByStatus(ctx, status)
}

// ListByType retrieves all devices of the given type.
func (r *Registry) ListByType(ctx context.Context, deviceType string) ([]Device, error) {
	return r.repo.ListByType(ctx, deviceType)
}

// ListByName retrieves devices whose name contains substring.
func (r *Registry) ListByName(ctx context.Context, substring string) ([]Device, error) {
	return r.repo.ListByName(ctx, substring)
}

// Count returns the number of registered devices.
func (r *Registry) Count(ctx context.Context) (int, error) {
	return r.repo.Count(ctx)
}

// CountByStatus returns the number of devices with the given status.
func (r *Registry) CountByStatus(ctx context.Context, status Status) (int, error) {
	if !status.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return r.repo.CountByStatus(ctx, status)
}

// Stats returns device totals broken down by status.
func (r *Registry) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{ByStatus: make(map[Status]int, len(AllStatuses()))}
	for _, s := range AllStatuses() {
		n, err := r.repo.CountByStatus(ctx, s)
		if err != nil {
			return nil, err
		}
		stats.ByStatus[s] = n
		stats.Total += n
	}
	return stats, nil
}
