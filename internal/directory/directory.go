package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Logger is the logging interface used by the Directory.
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

// Directory owns employees and departments.
type Directory struct {
	departments DepartmentRepository
	employees   EmployeeRepository
	logger      Logger
	now         func() time.Time
}

// New creates a Directory over the given repositories.
func New(departments DepartmentRepository, employees EmployeeRepository) *Directory {
	return &Directory{
		departments: departments,
		employees:   employees,
		logger:      noopLogger{},
		now:         time.Now,
	}
}

// SetLogger sets the logger for the directory.
func (d *Directory) SetLogger(logger Logger) {
	d.logger = logger
}

// CreateDepartment validates and stores a department.
func (d *Directory) CreateDepartment(ctx context.Context, dept *Department) error {
	normalizeDepartment(dept)
	if err := ValidateDepartment(dept); err != nil {
		return err
	}

	exists, err := d.departments.ExistsByCode(ctx, dept.Code)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDepartmentExists, dept.Code)
	}

	now := d.now().UTC()
	dept.CreatedAt = now
	dept.UpdatedAt = now
	if err := d.departments.Create(ctx, dept); err != nil {
		return err
	}

	d.logger.Info("department created", "code", dept.Code, "name", dept.Name)
	return nil
}

// UpdateDepartment changes a department's name and description.
func (d *Directory) UpdateDepartment(ctx context.Context, dept *Department) error {
	normalizeDepartment(dept)
	existing, err := d.departments.GetByCode(ctx, dept.Code)
	if err != nil {
		return err
	}
	if err := ValidateDepartment(dept); err != nil {
		return err
	}

	dept.CreatedAt = existing.CreatedAt
	dept.UpdatedAt = d.now().UTC()
	return d.departments.Update(ctx, dept)
}

// DeleteDepartment removes a department that no employee belongs to.
func (d *Directory) DeleteDepartment(ctx context.Context, code string) error {
	code = NormalizeCode(code)
	if _, err := d.departments.GetByCode(ctx, code); err != nil {
		return err
	}

	n, err := d.employees.CountByDepartment(ctx, code)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %s has %d employees", ErrDepartmentInUse, code, n)
	}

	if err := d.departments.Delete(ctx, code); err != nil {
		return err
	}
	d.logger.Info("department deleted", "code", code)
	return nil
}

// FindDepartment returns a department by code.
func (d *Directory) FindDepartment(ctx context.Context, code string) (*Department, error) {
	return d.departments.GetByCode(ctx, NormalizeCode(code))
}

// ListDepartments returns all departments ordered by code.
func (d *Directory) ListDepartments(ctx context.Context) ([]Department, error) {
	return d.departments.List(ctx)
}

// CountDepartments returns the number of departments.
func (d *Directory) CountDepartments(ctx context.Context) (int, error) {
	return d.departments.Count(ctx)
}

// ExistsByCode reports whether a department code is taken.
func (d *Directory) ExistsByCode(ctx context.Context, code string) (bool, error) {
	return d.departments.ExistsByCode(ctx, NormalizeCode(code))
}

// CreateEmployee validates and stores an employee, returning the new ID.
// Role defaults to staff.
func (d *Directory) CreateEmployee(ctx context.Context, e *Employee) (string, error) {
	normalizeEmployee(e)
	if err := d.validateEmployee(ctx, e, ""); err != nil {
		return "", err
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	now := d.now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	if err := d.employees.Create(ctx, e); err != nil {
		return "", err
	}

	d.logger.Info("employee created", "id", e.ID, "department", e.DepartmentCode, "role", e.Role)
	return e.ID, nil
}

// UpdateEmployee changes an employee's details.
func (d *Directory) UpdateEmployee(ctx context.Context, e *Employee) error {
	existing, err := d.employees.GetByID(ctx, e.ID)
	if err != nil {
		return err
	}

	normalizeEmployee(e)
	if err := d.validateEmployee(ctx, e, e.ID); err != nil {
		return err
	}

	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = d.now().UTC()
	return d.employees.Update(ctx, e)
}

// DeleteEmployee removes an employee that no request references.
func (d *Directory) DeleteEmployee(ctx context.Context, id string) error {
	if err := d.employees.Delete(ctx, id); err != nil {
		return err
	}
	d.logger.Info("employee deleted", "id", id)
	return nil
}

// FindEmployee returns an employee by ID.
func (d *Directory) FindEmployee(ctx context.Context, id string) (*Employee, error) {
	return d.employees.GetByID(ctx, id)
}

// ListEmployees returns all employees ordered by name.
func (d *Directory) ListEmployees(ctx context.Context) ([]Employee, error) {
	return d.employees.List(ctx)
}

// ListEmployeesByDepartment returns the employees of one department.
// Returns ErrDepartmentNotFound for an unknown code.
func (d *Directory) ListEmployeesByDepartment(ctx context.Context, code string) ([]Employee, error) {
	code = NormalizeCode(code)
	if _, err := d.departments.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	return d.employees.ListByDepartment(ctx, code)
}

// CountEmployees returns the number of employees.
func (d *Directory) CountEmployees(ctx context.Context) (int, error) {
	return d.employees.Count(ctx)
}

// ExistsByEmail reports whether an email is registered.
func (d *Directory) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return d.employees.ExistsByEmail(ctx, NormalizeEmail(email), "")
}

func (d *Directory) validateEmployee(ctx context.Context, e *Employee, excludeID string) error {
	if err := ValidateEmployee(e); err != nil {
		return err
	}

	ok, err := d.departments.ExistsByCode(ctx, e.DepartmentCode)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDept, e.DepartmentCode)
	}

	taken, err := d.employees.ExistsByEmail(ctx, e.Email, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrEmailExists, e.Email)
	}
	return nil
}
