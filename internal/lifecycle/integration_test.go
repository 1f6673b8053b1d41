package lifecycle_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nerrad567/assetflow-core/internal/allocation"
	"github.com/nerrad567/assetflow-core/internal/apperr"
	"github.com/nerrad567/assetflow-core/internal/device"
	"github.com/nerrad567/assetflow-core/internal/directory"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/database"
	"github.com/nerrad567/assetflow-core/internal/lifecycle"
	"github.com/nerrad567/assetflow-core/internal/request"
	_ "github.com/nerrad567/assetflow-core/migrations"
)

type stack struct {
	devices     *device.Registry
	directory   *directory.Directory
	requests    *request.Manager
	allocations *allocation.Manager
	coordinator *lifecycle.Coordinator
}

func newStack(t *testing.T) *stack {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "assetflow.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	s := &stack{
		devices: device.NewRegistry(device.NewSQLiteRepository(db.DB)),
		directory: directory.New(
			directory.NewSQLiteDepartmentRepository(db.DB),
			directory.NewSQLiteEmployeeRepository(db.DB),
		),
	}
	s.requests = request.NewManager(request.NewSQLiteRepository(db.DB), s.devices, s.directory)
	s.allocations = allocation.NewManager(allocation.NewSQLiteRepository(db.DB), s.requests)

	s.coordinator, err = lifecycle.New(lifecycle.Deps{
		Devices:     s.devices,
		Requests:    s.requests,
		Allocations: s.allocations,
	})
	if err != nil {
		t.Fatalf("lifecycle.New() error = %v", err)
	}
	return s
}

func (s *stack) seed(t *testing.T, employees int) (deviceID string, employeeIDs []string) {
	t.Helper()
	ctx := context.Background()

	if err := s.directory.CreateDepartment(ctx, &directory.Department{Code: "IT", Name: "IT"}); err != nil {
		t.Fatalf("CreateDepartment() error = %v", err)
	}
	for i := 0; i < employees; i++ {
		id, err := s.directory.CreateEmployee(ctx, &directory.Employee{
			Name:           fmt.Sprintf("Employee %d", i),
			Email:          fmt.Sprintf("e%d@example.com", i),
			DepartmentCode: "IT",
		})
		if err != nil {
			t.Fatalf("CreateEmployee() error = %v", err)
		}
		employeeIDs = append(employeeIDs, id)
	}

	deviceID, err := s.devices.Register(ctx, &device.Device{Name: "ThinkPad", Type: "laptop", SerialNumber: "PF-001"})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	return deviceID, employeeIDs
}

var admin = lifecycle.Actor{ID: "admin-1", Role: "admin"}

func TestIntegration_LaptopRepairScenario(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	d1, emps := s.seed(t, 1)

	reqID, err := s.requests.Create(ctx, d1, emps[0], "laptop repair")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := s.coordinator.Approve(ctx, reqID, admin); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	dev, _ := s.devices.Find(ctx, d1)
	if dev.Status != device.StatusInUse {
		t.Errorf("device status = %q, want in_use", dev.Status)
	}
	if n, _ := s.allocations.CountActive(ctx); n != 1 {
		t.Errorf("CountActive() = %d, want 1", n)
	}

	res, err := s.coordinator.ReturnDevice(ctx, d1, allocation.ConditionDamaged, "screen cracked", admin)
	if err != nil {
		t.Fatalf("ReturnDevice() error = %v", err)
	}
	if res.Device.Status != device.StatusMaintenance {
		t.Errorf("device status = %q, want maintenance", res.Device.Status)
	}
	if res.Allocation.ReturnStatus != allocation.ReturnStatusReturned || res.Allocation.ReturnNote != "screen cracked" {
		t.Errorf("allocation = %+v", res.Allocation)
	}
	if res.Request.Status != request.StatusCompleted {
		t.Errorf("request status = %q, want completed", res.Request.Status)
	}

	if _, err := s.coordinator.ReturnDevice(ctx, d1, allocation.ConditionGood, "", admin); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second ReturnDevice() error = %v, want not found", err)
	}

	// Back into service, then a new request can be approved.
	if _, err := s.coordinator.ChangeDeviceStatus(ctx, d1, device.StatusAvailable, admin); err != nil {
		t.Fatalf("ChangeDeviceStatus() error = %v", err)
	}
	next, _ := s.requests.Create(ctx, d1, emps[0], "replacement")
	if _, err := s.coordinator.Approve(ctx, next, admin); err != nil {
		t.Errorf("Approve(next) error = %v", err)
	}

	if err := s.coordinator.RemoveDevice(ctx, d1, admin); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("RemoveDevice() error = %v, want conflict", err)
	}
}

func TestIntegration_ConcurrentApprovals(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)

	const n = 8
	d1, emps := s.seed(t, n)

	reqIDs := make([]string, n)
	for i := range reqIDs {
		id, err := s.requests.Create(ctx, d1, emps[i], "need it")
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		reqIDs[i] = id
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range reqIDs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.coordinator.Approve(ctx, reqIDs[i], admin)
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.Kind(err) == apperr.KindConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != n-1 {
		t.Errorf("successes = %d, conflicts = %d; want 1 and %d", ok, conflicts, n-1)
	}
	if total, _ := s.allocations.Count(ctx); total != 1 {
		t.Errorf("allocations = %d, want 1", total)
	}
	if pending, _ := s.requests.CountByStatus(ctx, request.StatusPending); pending != n-1 {
		t.Errorf("pending requests = %d, want %d", pending, n-1)
	}
}

func TestIntegration_RemoveUnusedDevice(t *testing.T) {
	ctx := context.Background()
	s := newStack(t)
	d1, _ := s.seed(t, 0)

	if err := s.coordinator.RemoveDevice(ctx, d1, admin); err != nil {
		t.Fatalf("RemoveDevice() error = %v", err)
	}
	if n, _ := s.devices.Count(ctx); n != 0 {
		t.Errorf("Count() = %d, want 0", n)
	}
}
