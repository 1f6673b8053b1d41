package request

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nerrad567/assetflow-core/internal/apperr"
	"github.com/nerrad567/assetflow-core/internal/device"
	"github.com/nerrad567/assetflow-core/internal/directory"
)

// setupTestDB creates an in-memory SQLite database with the requests table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE requests (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			employee_id TEXT NOT NULL,
			reason TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
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

type fakeDevices map[string]bool

func (f fakeDevices) Find(_ context.Context, id string) (*device.Device, error) {
	if !f[id] {
		return nil, device.ErrDeviceNotFound
	}
	return &device.Device{ID: id}, nil
}

type fakeEmployees map[string]bool

func (f fakeEmployees) FindEmployee(_ context.Context, id string) (*directory.Employee, error) {
	if !f[id] {
		return nil, directory.ErrEmployeeNotFound
	}
	return &directory.Employee{ID: id}, nil
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(NewSQLiteRepository(setupTestDB(t)),
		fakeDevices{"d1": true, "d2": true},
		fakeEmployees{"e1": true, "e2": true},
	)
	// Distinct, increasing timestamps keep newest-first ordering deterministic.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return m
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	id, err := m.Create(ctx, "d1", "e1", "  laptop repair ")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := m.Find(ctx, id)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got.Status != StatusPending || got.Reason != "laptop repair" {
		t.Errorf("Find() = %+v", got)
	}

	tests := []struct {
		name       string
		deviceID   string
		employeeID string
		reason     string
		want       error
	}{
		{name: "blank reason", deviceID: "d1", employeeID: "e1", reason: "  ", want: ErrInvalidReason},
		{name: "unknown device", deviceID: "dx", employeeID: "e1", reason: "r", want: ErrUnknownDevice},
		{name: "unknown employee", deviceID: "d1", employeeID: "ex", reason: "r", want: ErrUnknownEmployee},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Create(ctx, tt.deviceID, tt.employeeID, tt.reason)
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("Create() error = %v, want validation kind", err)
			}
		})
	}

	if n, _ := m.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestManager_SetStatus(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)
	id, _ := m.Create(ctx, "d1", "e1", "r")

	// No transition legality here: completed straight from pending is persisted.
	if err := m.SetStatus(ctx, id, StatusCompleted); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	got, _ := m.Find(ctx, id)
	if got.Status != StatusCompleted {
		t.Errorf("Status = %q, want %q", got.Status, StatusCompleted)
	}

	if err := m.SetStatus(ctx, "missing", StatusApproved); !errors.Is(err, ErrRequestNotFound) {
		t.Errorf("SetStatus(missing) error = %v, want ErrRequestNotFound", err)
	}
	if err := m.SetStatus(ctx, id, "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("SetStatus(archived) error = %v, want ErrInvalidStatus", err)
	}
}

func TestManager_Queries(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	first, _ := m.Create(ctx, "d1", "e1", "Laptop repair")
	second, _ := m.Create(ctx, "d1", "e2", "Conference 50% off")
	third, _ := m.Create(ctx, "d2", "e1", "new starter")
	_ = m.SetStatus(ctx, third, StatusRejected)

	byDevice, _ := m.FindByDevice(ctx, "d1")
	if len(byDevice) != 2 || byDevice[0].ID != second || byDevice[1].ID != first {
		t.Errorf("FindByDevice(d1) = %v, want [second first]", byDevice)
	}

	byEmployee, _ := m.FindByEmployee(ctx, "e1")
	if len(byEmployee) != 2 {
		t.Errorf("FindByEmployee(e1) = %d, want 2", len(byEmployee))
	}

	pending, _ := m.FindByStatus(ctx, StatusPending)
	if len(pending) != 2 {
		t.Errorf("FindByStatus(pending) = %d, want 2", len(pending))
	}

	found, _ := m.SearchByReason(ctx, "REPAIR")
	if len(found) != 1 || found[0].ID != first {
		t.Errorf("SearchByReason(REPAIR) = %v, want [first]", found)
	}
	found, _ = m.SearchByReason(ctx, "50%")
	if len(found) != 1 || found[0].ID != second {
		t.Errorf("SearchByReason(50%%) = %v, want [second]", found)
	}

	all, _ := m.List(ctx)
	if len(all) != 3 || all[0].ID != third {
		t.Errorf("List() = %v, want 3 newest first", all)
	}

	counts := []struct {
		name string
		fn   func() (int, error)
		want int
	}{
		{"Count", func() (int, error) { return m.Count(ctx) }, 3},
		{"CountByStatus(rejected)", func() (int, error) { return m.CountByStatus(ctx, StatusRejected) }, 1},
		{"CountByEmployee(e2)", func() (int, error) { return m.CountByEmployee(ctx, "e2") }, 1},
		{"CountByDevice(d1)", func() (int, error) { return m.CountByDevice(ctx, "d1") }, 2},
		{"CountByDevice(none)", func() (int, error) { return m.CountByDevice(ctx, "d9") }, 0},
	}
	for _, c := range counts {
		got, err := c.fn()
		if err != nil || got != c.want {
			t.Errorf("%s = %d, %v; want %d", c.name, got, err, c.want)
		}
	}
}
