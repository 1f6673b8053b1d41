package device

import (
	"fmt"

	"github.com/nerrad567/assetflow-core/internal/apperr"
)

// Domain errors for the device package.
//
// Each error wraps an apperr kind, so both checks work:
//
//	if errors.Is(err, device.ErrDeviceNotFound) { ... }
//	if errors.Is(err, apperr.ErrNotFound) { ... }
var (
	// ErrDeviceNotFound is returned when a device ID does not exist.
	ErrDeviceNotFound = fmt.Errorf("device: %w", apperr.ErrNotFound)

	// ErrDeviceExists is returned when creating a device with an ID that already exists.
	ErrDeviceExists = fmt.Errorf("device: id already exists: %w", apperr.ErrDuplicate)

	// ErrDuplicateSerial is returned when a serial number is already registered.
	ErrDuplicateSerial = fmt.Errorf("device: serial number already registered: %w", apperr.ErrDuplicate)

	// ErrInvalidName is returned when a device name is empty or too long.
	ErrInvalidName = fmt.Errorf("device: invalid name: %w", apperr.ErrValidation)

	// ErrInvalidType is returned when a device type is empty or too long.
	ErrInvalidType = fmt.Errorf("device: invalid type: %w", apperr.ErrValidation)

	// ErrInvalidStatus is returned for a status value outside the known set.
	ErrInvalidStatus = fmt.Errorf("device: invalid status: %w", apperr.ErrValidation)

	// ErrInvalidDevice is returned for any other field validation failure.
	ErrInvalidDevice = fmt.Errorf("device: invalid: %w", apperr.ErrValidation)
)
