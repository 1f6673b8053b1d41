package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nerrad567/assetflow-core/internal/infrastructure/database"
)

// DepartmentRepository defines persistence for departments.
type DepartmentRepository interface {
	GetByCode(ctx context.Context, code string) (*Department, error)
	List(ctx context.Context) ([]Department, error)
	Create(ctx context.Context, d *Department) error
	Update(ctx context.Context, d *Department) error
	Delete(ctx context.Context, code string) error
	Count(ctx context.Context) (int, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// EmployeeRepository defines persistence for employees.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
	ListByDepartment(ctx context.Context, code string) ([]Employee, error)
	Create(ctx context.Context, e *Employee) error
	Update(ctx context.Context, e *Employee) error

	// Delete returns ErrEmployeeInUse when requests still reference the employee.
	Delete(ctx context.Context, id string) error

	Count(ctx context.Context) (int, error)
	CountByDepartment(ctx context.Context, code string) (int, error)

	// ExistsByEmail reports whether an employee other than excludeID owns the email.
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
}

// SQLiteDepartmentRepository implements DepartmentRepository using SQLite.
type SQLiteDepartmentRepository struct {
	db *sql.DB
}

// NewSQLiteDepartmentRepository creates a department repository.
func NewSQLiteDepartmentRepository(db *sql.DB) *SQLiteDepartmentRepository {
	return &SQLiteDepartmentRepository{db: db}
}

const selectDepartment = `SELECT code, name, description, created_at, updated_at FROM departments`

func (r *SQLiteDepartmentRepository) GetByCode(ctx context.Context, code string) (*Department, error) {
	d, err := scanDepartment(r.db.QueryRowContext(ctx, selectDepartment+` WHERE code = ?`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("querying department: %w", err)
	}
	return d, nil
}

func (r *SQLiteDepartmentRepository) List(ctx context.Context) ([]Department, error) {
	rows, err := r.db.QueryContext(ctx, selectDepartment+` ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("querying departments: %w", err)
	}
	defer rows.Close()

	departments := []Department{}
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning department: %w", err)
		}
		departments = append(departments, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating departments: %w", err)
	}
	return departments, nil
}

func (r *SQLiteDepartmentRepository) Create(ctx context.Context, d *Department) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO departments (code, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		d.Code, d.Name, database.NullString(d.Description),
		database.FormatTime(d.CreatedAt), database.FormatTime(d.UpdatedAt),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDepartmentExists
		}
		return fmt.Errorf("inserting department: %w", err)
	}
	return nil
}

func (r *SQLiteDepartmentRepository) Update(ctx context.Context, d *Department) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE departments SET name = ?, description = ?, updated_at = ? WHERE code = ?`,
		d.Name, database.NullString(d.Description), database.FormatTime(d.UpdatedAt), d.Code,
	)
	if err != nil {
		return fmt.Errorf("updating department: %w", err)
	}
	return affectedOne(result, ErrDepartmentNotFound)
}

func (r *SQLiteDepartmentRepository) Delete(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM departments WHERE code = ?`, code)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrDepartmentInUse
		}
		return fmt.Errorf("deleting department: %w", err)
	}
	return affectedOne(result, ErrDepartmentNotFound)
}

func (r *SQLiteDepartmentRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM departments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting departments: %w", err)
	}
	return n, nil
}

func (r *SQLiteDepartmentRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM departments WHERE code = ?`, code).Scan(&n); err != nil {
		return false, fmt.Errorf("checking department code: %w", err)
	}
	return n > 0, nil
}

func scanDepartment(s database.RowScanner) (*Department, error) {
	var d Department
	var description sql.NullString
	var createdAt, updatedAt string
	if err := s.Scan(&d.Code, &d.Name, &description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	d.Description = description.String

	var err error
	if d.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &d, nil
}

// SQLiteEmployeeRepository implements EmployeeRepository using SQLite.
type SQLiteEmployeeRepository struct {
	db *sql.DB
}

// NewSQLiteEmployeeRepository creates an employee repository.
func NewSQLiteEmployeeRepository(db *sql.DB) *SQLiteEmployeeRepository {
	return &SQLiteEmployeeRepository{db: db}
}

const selectEmployee = `SELECT id, name, email, department_code, role, created_at, updated_at FROM employees`

func (r *SQLiteEmployeeRepository) GetByID(ctx context.Context, id string) (*Employee, error) {
	e, err := scanEmployee(r.db.QueryRowContext(ctx, selectEmployee+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("querying employee: %w", err)
	}
	return e, nil
}

func (r *SQLiteEmployeeRepository) List(ctx context.Context) ([]Employee, error) {
	return r.query(ctx, selectEmployee+` ORDER BY name, id`)
}

func (r *SQLiteEmployeeRepository) ListByDepartment(ctx context.Context, code string) ([]Employee, error) {
	return r.query(ctx, selectEmployee+` WHERE department_code = ? ORDER BY name, id`, code)
}

func (r *SQLiteEmployeeRepository) Create(ctx context.Context, e *Employee) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, department_code, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Email, e.DepartmentCode, string(e.Role),
		database.FormatTime(e.CreatedAt), database.FormatTime(e.UpdatedAt),
	)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return ErrEmailExists
		case database.IsForeignKeyViolation(err):
			return ErrUnknownDept
		}
		return fmt.Errorf("inserting employee: %w", err)
	}
	return nil
}

func (r *SQLiteEmployeeRepository) Update(ctx context.Context, e *Employee) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE employees
		SET name = ?, email = ?, department_code = ?, role = ?, updated_at = ?
		WHERE id = ?`,
		e.Name, e.Email, e.DepartmentCode, string(e.Role), database.FormatTime(e.UpdatedAt), e.ID,
	)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return ErrEmailExists
		case database.IsForeignKeyViolation(err):
			return ErrUnknownDept
		}
		return fmt.Errorf("updating employee: %w", err)
	}
	return affectedOne(result, ErrEmployeeNotFound)
}

func (r *SQLiteEmployeeRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return ErrEmployeeInUse
		}
		return fmt.Errorf("deleting employee: %w", err)
	}
	return affectedOne(result, ErrEmployeeNotFound)
}

func (r *SQLiteEmployeeRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting employees: %w", err)
	}
	return n, nil
}

func (r *SQLiteEmployeeRepository) CountByDepartment(ctx context.Context, code string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees WHERE department_code = ?`, code).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting employees by department: %w", err)
	}
	return n, nil
}

func (r *SQLiteEmployeeRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM employees WHERE email = ? COLLATE NOCASE AND id != ?`,
		email, excludeID).Scan(&n); err != nil {
		return false, fmt.Errorf("checking email: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteEmployeeRepository) query(ctx context.Context, q string, args ...any) ([]Employee, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying employees: %w", err)
	}
	defer rows.Close()

	employees := []Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning employee: %w", err)
		}
		employees = append(employees, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating employees: %w", err)
	}
	return employees, nil
}

func scanEmployee(s database.RowScanner) (*Employee, error) {
	var e Employee
	var role, createdAt, updatedAt string
	if err := s.Scan(&e.ID, &e.Name, &e.Email, &e.DepartmentCode, &role, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	e.Role = Role(role)

	var err error
	if e.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func affectedOne(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
