package lifecycle

import (
	"fmt"

	"github.com/nerrad567/assetflow-core/internal/apperr"
)

// Domain errors for lifecycle operations.
var (
	// ErrInvalidActor is returned when an operation is invoked without an actor ID.
	ErrInvalidActor = fmt.Errorf("lifecycle: actor id is required: %w", apperr.ErrValidation)

	// ErrRequestNotPending is returned when approving or rejecting a decided request.
	ErrRequestNotPending = fmt.Errorf("lifecycle: request is not pending: %w", apperr.ErrInvalidState)

	// ErrDeviceBusy is returned when the device already has an active allocation.
	ErrDeviceBusy = fmt.Errorf("lifecycle: device has an active allocation: %w", apperr.ErrConflict)

	// ErrDeviceUnavailable is returned when approving for a device that is not available.
	ErrDeviceUnavailable = fmt.Errorf("lifecycle: device is not available: %w", apperr.ErrConflict)

	// ErrNothingToReturn is returned when the device has no active allocation.
	ErrNothingToReturn = fmt.Errorf("lifecycle: no active allocation for device: %w", apperr.ErrNotFound)

	// ErrStatusNotSettable is returned for a manual change to in_use.
	ErrStatusNotSettable = fmt.Errorf("lifecycle: status can only be reached through approval: %w", apperr.ErrInvalidState)

	// ErrDeviceHasHistory is returned when removing a device that has requests.
	ErrDeviceHasHistory = fmt.Errorf("lifecycle: device has request history: %w", apperr.ErrConflict)

	// ErrLockTimeout is returned when the per-device lock cannot be acquired in time.
	ErrLockTimeout = fmt.Errorf("lifecycle: timed out waiting for device lock: %w", apperr.ErrConflict)
)
