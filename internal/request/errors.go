package request

import (
	"fmt"

	"github.com/nerrad567/assetflow-core/internal/apperr"
)

// Domain errors for the request package.
var (
	ErrRequestNotFound = fmt.Errorf("request: %w", apperr.ErrNotFound)
	ErrRequestExists   = fmt.Errorf("request: id already exists: %w", apperr.ErrDuplicate)
	ErrInvalidReason   = fmt.Errorf("request: invalid reason: %w", apperr.ErrValidation)
	ErrInvalidStatus   = fmt.Errorf("request: invalid status: %w", apperr.ErrValidation)
	ErrUnknownDevice   = fmt.Errorf("request: unknown device: %w", apperr.ErrValidation)
	ErrUnknownEmployee = fmt.Errorf("request: unknown employee: %w", apperr.ErrValidation)
)
