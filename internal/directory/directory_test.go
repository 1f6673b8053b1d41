package directory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nerrad567/assetflow-core/internal/apperr"
)

// setupTestDB creates an in-memory SQLite database with the directory tables
// and a minimal requests table for foreign-key checks.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE departments (
			code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;
		CREATE TABLE employees (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			department_code TEXT NOT NULL REFERENCES departments(code) ON DELETE RESTRICT,
			role TEXT NOT NULL DEFAULT 'staff',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		) STRICT;
		CREATE UNIQUE INDEX idx_employees_email ON employees(email COLLATE NOCASE);
		CREATE TABLE requests (
			id TEXT PRIMARY KEY,
			employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE RESTRICT
		) STRICT;
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func newTestDirectory(t *testing.T) (*Directory, *sql.DB) {
	t.Helper()
	db := setupTestDB(t)
	return New(NewSQLiteDepartmentRepository(db), NewSQLiteEmployeeRepository(db)), db
}

func TestDirectory_CreateDepartment(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)

	if err := dir.CreateDepartment(ctx, &Department{Code: " it ", Name: "Information Technology"}); err != nil {
		t.Fatalf("CreateDepartment() error = %v", err)
	}

	got, err := dir.FindDepartment(ctx, "IT")
	if err != nil {
		t.Fatalf("FindDepartment() error = %v", err)
	}
	if got.Name != "Information Technology" {
		t.Errorf("Name = %q", got.Name)
	}

	tests := []struct {
		name string
		dept *Department
		want error
	}{
		{name: "duplicate code", dept: &Department{Code: "it", Name: "Other"}, want: apperr.ErrDuplicate},
		{name: "blank code", dept: &Department{Code: " ", Name: "X"}, want: apperr.ErrValidation},
		{name: "blank name", dept: &Department{Code: "HR", Name: ""}, want: apperr.ErrValidation},
		{name: "code with space", dept: &Department{Code: "H R", Name: "HR"}, want: apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := dir.CreateDepartment(ctx, tt.dept); !errors.Is(err, tt.want) {
				t.Errorf("CreateDepartment() error = %v, want %v", err, tt.want)
			}
		})
	}

	n, _ := dir.CountDepartments(ctx)
	if n != 1 {
		t.Errorf("CountDepartments() = %d, want 1", n)
	}
}

func TestDirectory_DeleteDepartment_InUse(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)

	_ = dir.CreateDepartment(ctx, &Department{Code: "OPS", Name: "Operations"})
	if _, err := dir.CreateEmployee(ctx, &Employee{Name: "Ann", Email: "ann@example.com", DepartmentCode: "OPS"}); err != nil {
		t.Fatalf("CreateEmployee() error = %v", err)
	}

	err := dir.DeleteDepartment(ctx, "ops")
	if !errors.Is(err, ErrDepartmentInUse) || !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("DeleteDepartment() error = %v, want ErrDepartmentInUse", err)
	}
	if n, _ := dir.CountDepartments(ctx); n != 1 {
		t.Errorf("CountDepartments() = %d after failed delete, want 1", n)
	}

	if err := dir.DeleteDepartment(ctx, "NOPE"); !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("DeleteDepartment(unknown) error = %v, want ErrDepartmentNotFound", err)
	}
}

func TestDirectory_UpdateDepartment(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)
	_ = dir.CreateDepartment(ctx, &Department{Code: "FIN", Name: "Finance"})

	if err := dir.UpdateDepartment(ctx, &Department{Code: "fin", Name: "Finance & Accounts", Description: "money"}); err != nil {
		t.Fatalf("UpdateDepartment() error = %v", err)
	}
	got, _ := dir.FindDepartment(ctx, "FIN")
	if got.Name != "Finance & Accounts" || got.Description != "money" {
		t.Errorf("FindDepartment() = %+v", got)
	}

	if err := dir.UpdateDepartment(ctx, &Department{Code: "NONE", Name: "x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("UpdateDepartment(unknown) error = %v, want not found", err)
	}
}

func TestDirectory_CreateEmployee(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)
	_ = dir.CreateDepartment(ctx, &Department{Code: "IT", Name: "IT"})

	id, err := dir.CreateEmployee(ctx, &Employee{Name: "Bob", Email: " Bob@Example.com ", DepartmentCode: "it"})
	if err != nil {
		t.Fatalf("CreateEmployee() error = %v", err)
	}
	got, _ := dir.FindEmployee(ctx, id)
	if got.Email != "bob@example.com" {
		t.Errorf("Email = %q, want normalised", got.Email)
	}
	if got.Role != RoleStaff {
		t.Errorf("Role = %q, want %q", got.Role, RoleStaff)
	}

	tests := []struct {
		name string
		emp  *Employee
		want error
	}{
		{name: "duplicate email different case", emp: &Employee{Name: "B2", Email: "BOB@example.com", DepartmentCode: "IT"}, want: ErrEmailExists},
		{name: "blank name", emp: &Employee{Email: "x@example.com", DepartmentCode: "IT"}, want: ErrInvalidEmployee},
		{name: "blank email", emp: &Employee{Name: "X", DepartmentCode: "IT"}, want: ErrInvalidEmail},
		{name: "malformed email", emp: &Employee{Name: "X", Email: "not-an-email", DepartmentCode: "IT"}, want: ErrInvalidEmail},
		{name: "unknown role", emp: &Employee{Name: "X", Email: "x@example.com", DepartmentCode: "IT", Role: "ceo"}, want: ErrInvalidRole},
		{name: "unknown department", emp: &Employee{Name: "X", Email: "x@example.com", DepartmentCode: "HR"}, want: ErrUnknownDept},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := dir.CreateEmployee(ctx, tt.emp); !errors.Is(err, tt.want) {
				t.Errorf("CreateEmployee() error = %v, want %v", err, tt.want)
			}
		})
	}

	if n, _ := dir.CountEmployees(ctx); n != 1 {
		t.Errorf("CountEmployees() = %d, want 1", n)
	}
	if ok, _ := dir.ExistsByEmail(ctx, "BOB@EXAMPLE.COM"); !ok {
		t.Error("ExistsByEmail() = false, want true")
	}
}

func TestDirectory_UpdateEmployee(t *testing.T) {
	ctx := context.Background()
	dir, _ := newTestDirectory(t)
	_ = dir.CreateDepartment(ctx, &Department{Code: "IT", Name: "IT"})
	_ = dir.CreateDepartment(ctx, &Department{Code: "HR", Name: "HR"})
	annID, _ := dir.CreateEmployee(ctx, &Employee{Name: "Ann", Email: "ann@example.com", DepartmentCode: "IT"})
	_, _ = dir.CreateEmployee(ctx, &Employee{Name: "Cat", Email: "cat@example.com", DepartmentCode: "IT"})

	err := dir.UpdateEmployee(ctx, &Employee{ID: annID, Name: "Ann", Email: "ann@example.com", DepartmentCode: "HR", Role: RoleManager})
	if err != nil {
		t.Fatalf("UpdateEmployee() error = %v", err)
	}
	hr, _ := dir.ListEmployeesByDepartment(ctx, "HR")
	if len(hr) != 1 || hr[0].Role != RoleManager {
		t.Errorf("ListEmployeesByDepartment(HR) = %+v", hr)
	}

	err = dir.UpdateEmployee(ctx, &Employee{ID: annID, Name: "Ann", Email: "cat@example.com", DepartmentCode: "HR"})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("UpdateEmployee(taken email) error = %v, want ErrEmailExists", err)
	}

	err = dir.UpdateEmployee(ctx, &Employee{ID: "missing", Name: "X", Email: "x@example.com", DepartmentCode: "HR"})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("UpdateEmployee(missing) error = %v, want ErrEmployeeNotFound", err)
	}
}

func TestDirectory_DeleteEmployee(t *testing.T) {
	ctx := context.Background()
	dir, db := newTestDirectory(t)
	_ = dir.CreateDepartment(ctx, &Department{Code: "IT", Name: "IT"})
	busy, _ := dir.CreateEmployee(ctx, &Employee{Name: "Busy", Email: "busy@example.com", DepartmentCode: "IT"})
	free, _ := dir.CreateEmployee(ctx, &Employee{Name: "Free", Email: "free@example.com", DepartmentCode: "IT"})

	if _, err := db.Exec(`INSERT INTO requests (id, employee_id) VALUES ('req-1', ?)`, busy); err != nil {
		t.Fatalf("seeding request: %v", err)
	}

	if err := dir.DeleteEmployee(ctx, busy); !errors.Is(err, ErrEmployeeInUse) {
		t.Errorf("DeleteEmployee(referenced) error = %v, want ErrEmployeeInUse", err)
	}
	if err := dir.DeleteEmployee(ctx, free); err != nil {
		t.Errorf("DeleteEmployee() error = %v", err)
	}
	if err := dir.DeleteEmployee(ctx, free); !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("DeleteEmployee() twice error = %v, want ErrEmployeeNotFound", err)
	}
	if n, _ := dir.CountEmployees(ctx); n != 1 {
		t.Errorf("CountEmployees() = %d, want 1", n)
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"a@example.com", true},
		{"first.last@sub.example.org", true},
		{"", false},
		{"plain", false},
		{"a@localhost", false},
		{"Ann <ann@example.com>", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := validateEmail(tt.email)
			if (err == nil) != tt.ok {
				t.Errorf("validateEmail(%q) error = %v, want ok=%v", tt.email, err, tt.ok)
			}
		})
	}
}
