package directory

import (
	"fmt"

	"github.com/nerrad567/assetflow-core/internal/apperr"
)

// Domain errors for the directory package.
var (
	ErrDepartmentNotFound = fmt.Errorf("department: %w", apperr.ErrNotFound)
	ErrDepartmentExists   = fmt.Errorf("department: code already exists: %w", apperr.ErrDuplicate)
	ErrDepartmentInUse    = fmt.Errorf("department: employees still assigned: %w", apperr.ErrConflict)
	ErrInvalidDepartment  = fmt.Errorf("department: invalid: %w", apperr.ErrValidation)

	ErrEmployeeNotFound = fmt.Errorf("employee: %w", apperr.ErrNotFound)
	ErrEmailExists      = fmt.Errorf("employee: email already registered: %w", apperr.ErrDuplicate)
	ErrEmployeeInUse    = fmt.Errorf("employee: referenced by requests: %w", apperr.ErrConflict)
	ErrInvalidEmployee  = fmt.Errorf("employee: invalid: %w", apperr.ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("employee: invalid email: %w", apperr.ErrValidation)
	ErrInvalidRole      = fmt.Errorf("employee: invalid role: %w", apperr.ErrValidation)
	ErrUnknownDept      = fmt.Errorf("employee: unknown department: %w", apperr.ErrValidation)
)
