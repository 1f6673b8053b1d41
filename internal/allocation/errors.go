package allocation

import (
	"fmt"

	"github.com/nerrad567/assetflow-core/internal/apperr"
)

// Domain errors for the allocation package.
var (
	ErrAllocationNotFound = fmt.Errorf("allocation: %w", apperr.ErrNotFound)

	// ErrDeviceAllocated is returned when the device already has an active allocation.
	ErrDeviceAllocated = fmt.Errorf("allocation: device already allocated: %w", apperr.ErrConflict)

	// ErrRequestAllocated is returned when the request already produced an allocation.
	ErrRequestAllocated = fmt.Errorf("allocation: request already allocated: %w", apperr.ErrConflict)

	ErrAlreadyReturned  = fmt.Errorf("allocation: already returned: %w", apperr.ErrInvalidState)
	ErrNotReturned      = fmt.Errorf("allocation: not returned: %w", apperr.ErrInvalidState)
	ErrInvalidCondition = fmt.Errorf("allocation: invalid return condition: %w", apperr.ErrValidation)
	ErrInvalidActor     = fmt.Errorf("allocation: actor is required: %w", apperr.ErrValidation)
)
