package allocation

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nerrad567/assetflow-core/internal/apperr"
	"github.com/nerrad567/assetflow-core/internal/request"
)

// setupTestDB creates an in-memory SQLite database with the allocations table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE allocations (
			id TEXT PRIMARY KEY,
			request_id TEXT NOT NULL UNIQUE,
			device_id TEXT NOT NULL,
			employee_id TEXT NOT NULL,
			return_status TEXT NOT NULL DEFAULT 'not_returned',
			condition TEXT,
			return_note TEXT,
			issued_by TEXT NOT NULL,
			received_by TEXT,
			allocated_at TEXT NOT NULL,
			returned_at TEXT
		) STRICT;
		CREATE UNIQUE INDEX idx_allocations_device_active ON allocations(device_id)
			WHERE return_status = 'not_returned';
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

type fakeRequests map[string]*request.Request

func (f fakeRequests) Find(_ context.Context, id string) (*request.Request, error) {
	r, ok := f[id]
	if !ok {
		return nil, request.ErrRequestNotFound
	}
	return r.Clone(), nil
}

func newTestManager(t *testing.T) (*Manager, *SQLiteRepository) {
	t.Helper()
	reqs := fakeRequests{
		"r1": {ID: "r1", DeviceID: "d1", EmployeeID: "e1", Status: request.StatusApproved},
		"r2": {ID: "r2", DeviceID: "d1", EmployeeID: "e2", Status: request.StatusApproved},
		"r3": {ID: "r3", DeviceID: "d2", EmployeeID: "e1", Status: request.StatusApproved},
	}
	repo := NewSQLiteRepository(setupTestDB(t))
	return NewManager(repo, reqs), repo
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	id, err := m.Create(ctx, "r1", "mgr-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	a, err := m.Find(ctx, id)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if a.DeviceID != "d1" || a.EmployeeID != "e1" || a.IssuedBy != "mgr-1" || !a.Active() {
		t.Errorf("Find() = %+v", a)
	}

	busy, _ := m.IsDeviceBeingAllocated(ctx, "d1")
	if !busy {
		t.Error("IsDeviceBeingAllocated(d1) = false, want true")
	}

	t.Run("second request for same device", func(t *testing.T) {
		_, err := m.Create(ctx, "r2", "mgr-1")
		if !errors.Is(err, ErrDeviceAllocated) || !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("Create(r2) error = %v, want ErrDeviceAllocated", err)
		}
	})

	t.Run("unknown request", func(t *testing.T) {
		if _, err := m.Create(ctx, "nope", "mgr-1"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("Create(nope) error = %v, want not found", err)
		}
	})

	t.Run("blank actor", func(t *testing.T) {
		if _, err := m.Create(ctx, "r3", " "); !errors.Is(err, ErrInvalidActor) {
			t.Errorf("Create(blank actor) error = %v, want ErrInvalidActor", err)
		}
	})

	if n, _ := m.Count(ctx); n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestSQLiteRepository_Create_UniqueIndex(t *testing.T) {
	ctx := context.Background()
	_, repo := newTestManager(t)
	now := time.Now().UTC()

	first := &Allocation{ID: "a1", RequestID: "r1", DeviceID: "d1", EmployeeID: "e1",
		ReturnStatus: ReturnStatusNotReturned, IssuedBy: "m", AllocatedAt: now}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Bypasses the manager's pre-check, as a racing writer would.
	second := &Allocation{ID: "a2", RequestID: "r2", DeviceID: "d1", EmployeeID: "e2",
		ReturnStatus: ReturnStatusNotReturned, IssuedBy: "m", AllocatedAt: now}
	if err := repo.Create(ctx, second); !errors.Is(err, ErrDeviceAllocated) {
		t.Errorf("Create(same device) error = %v, want ErrDeviceAllocated", err)
	}

	again := &Allocation{ID: "a3", RequestID: "r1", DeviceID: "d9", EmployeeID: "e1",
		ReturnStatus: ReturnStatusNotReturned, IssuedBy: "m", AllocatedAt: now}
	if err := repo.Create(ctx, again); !errors.Is(err, ErrRequestAllocated) {
		t.Errorf("Create(same request) error = %v, want ErrRequestAllocated", err)
	}
}

func TestManager_RecordReturn(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	id, _ := m.Create(ctx, "r1", "mgr-1")

	if err := m.RecordReturn(ctx, id, "broken", "", "mgr-2"); !errors.Is(err, ErrInvalidCondition) {
		t.Errorf("RecordReturn(broken) error = %v, want ErrInvalidCondition", err)
	}

	if err := m.RecordReturn(ctx, id, ConditionDamaged, "screen cracked", "mgr-2"); err != nil {
		t.Fatalf("RecordReturn() error = %v", err)
	}

	a, _ := m.Find(ctx, id)
	if a.Active() || a.Condition != ConditionDamaged || a.ReturnNote != "screen cracked" || a.ReceivedBy != "mgr-2" {
		t.Errorf("Find() after return = %+v", a)
	}
	if a.ReturnedAt == nil {
		t.Error("ReturnedAt not set")
	}

	err := m.RecordReturn(ctx, id, ConditionGood, "", "mgr-2")
	if !errors.Is(err, ErrAlreadyReturned) || !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("RecordReturn() twice error = %v, want ErrAlreadyReturned", err)
	}
	if err := m.RecordReturn(ctx, "missing", ConditionGood, "", "mgr-2"); !errors.Is(err, ErrAllocationNotFound) {
		t.Errorf("RecordReturn(missing) error = %v, want ErrAllocationNotFound", err)
	}

	_, ok, err := m.FindCurrentForDevice(ctx, "d1")
	if err != nil || ok {
		t.Errorf("FindCurrentForDevice(d1) = ok %v, err %v; want none", ok, err)
	}

	// Once returned, the device can be allocated again.
	if _, err := m.Create(ctx, "r2", "mgr-1"); err != nil {
		t.Errorf("Create(r2) after return error = %v", err)
	}
}

func TestManager_CompensationHelpers(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)
	id, _ := m.Create(ctx, "r1", "mgr-1")

	if err := m.Reopen(ctx, id); !errors.Is(err, ErrNotReturned) {
		t.Errorf("Reopen(active) error = %v, want ErrNotReturned", err)
	}

	_ = m.RecordReturn(ctx, id, ConditionGood, "ok", "mgr-2")
	if err := m.Reopen(ctx, id); err != nil {
		t.Fatalf("Reopen() error = %v", err)
	}
	a, _ := m.Find(ctx, id)
	if !a.Active() || a.Condition != "" || a.ReturnedAt != nil || a.ReceivedBy != "" {
		t.Errorf("Find() after Reopen = %+v", a)
	}

	if err := m.Cancel(ctx, id); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if _, ok, _ := m.FindByRequest(ctx, "r1"); ok {
		t.Error("FindByRequest(r1) found a cancelled allocation")
	}
	if err := m.Cancel(ctx, id); !errors.Is(err, ErrAllocationNotFound) {
		t.Errorf("Cancel() twice error = %v, want ErrAllocationNotFound", err)
	}
}

func TestManager_Queries(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t)

	a1, _ := m.Create(ctx, "r1", "mgr")
	a3, _ := m.Create(ctx, "r3", "mgr")
	_ = m.RecordReturn(ctx, a1, ConditionGood, "", "mgr")

	cur, ok, err := m.FindCurrentForDevice(ctx, "d2")
	if err != nil || !ok || cur.ID != a3 {
		t.Errorf("FindCurrentForDevice(d2) = %v, %v, %v", cur, ok, err)
	}

	byReq, ok, _ := m.FindByRequest(ctx, "r1")
	if !ok || byReq.ID != a1 {
		t.Errorf("FindByRequest(r1) = %v, %v", byReq, ok)
	}

	active, _ := m.FindActive(ctx)
	if len(active) != 1 || active[0].ID != a3 {
		t.Errorf("FindActive() = %v", active)
	}
	returned, _ := m.FindReturned(ctx)
	if len(returned) != 1 || returned[0].ID != a1 {
		t.Errorf("FindReturned() = %v", returned)
	}
	held, _ := m.FindActiveByEmployee(ctx, "e1")
	if len(held) != 1 || held[0].DeviceID != "d2" {
		t.Errorf("FindActiveByEmployee(e1) = %v", held)
	}
	all, _ := m.List(ctx)
	if len(all) != 2 {
		t.Errorf("List() = %d, want 2", len(all))
	}

	if n, _ := m.CountActive(ctx); n != 1 {
		t.Errorf("CountActive() = %d, want 1", n)
	}
	if n, _ := m.CountReturned(ctx); n != 1 {
		t.Errorf("CountReturned() = %d, want 1", n)
	}
	if n, _ := m.Count(ctx); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}
