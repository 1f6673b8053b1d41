package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nerrad567/assetflow-core/internal/device"
	"github.com/nerrad567/assetflow-core/internal/request"
)

type fakeSources struct {
	deviceErr  error
	requestErr error
}

func (f *fakeSources) Stats(context.Context) (*device.Stats, error) {
	if f.deviceErr != nil {
		return nil, f.deviceErr
	}
	return &device.Stats{Total: 6, ByStatus: map[device.Status]int{
		device.StatusAvailable:   3,
		device.StatusInUse:       2,
		device.StatusMaintenance: 1,
	}}, nil
}

func (f *fakeSources) CountByStatus(_ context.Context, s request.Status) (int, error) {
	if f.requestErr != nil {
		return 0, f.requestErr
	}
	return map[request.Status]int{
		request.StatusPending:   4,
		request.StatusApproved:  2,
		request.StatusRejected:  1,
		request.StatusCompleted: 5,
	}[s], nil
}

func (f *fakeSources) CountActive(context.Context) (int, error)      { return 2, nil }
func (f *fakeSources) CountReturned(context.Context) (int, error)    { return 5, nil }
func (f *fakeSources) CountDepartments(context.Context) (int, error) { return 3, nil }
func (f *fakeSources) CountEmployees(context.Context) (int, error)   { return 11, nil }

func newTestReporter(t *testing.T, f *fakeSources) *Reporter {
	t.Helper()
	r, err := NewReporter(Sources{Devices: f, Requests: f, Allocations: f, Directory: f})
	if err != nil {
		t.Fatalf("NewReporter() error = %v", err)
	}
	r.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestReporter_Summary(t *testing.T) {
	s, err := newTestReporter(t, &fakeSources{}).Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary() error = %v", err)
	}

	if s.Devices.Total != 6 || s.Devices.ByStatus["in_use"] != 2 {
		t.Errorf("Devices = %+v", s.Devices)
	}
	if s.Requests.Total != 12 || s.Requests.ByStatus["pending"] != 4 {
		t.Errorf("Requests = %+v", s.Requests)
	}
	if s.Allocations != (AllocationCounts{Active: 2, Returned: 5}) {
		t.Errorf("Allocations = %+v", s.Allocations)
	}
	if s.Departments != 3 || s.Employees != 11 {
		t.Errorf("Departments/Employees = %d/%d", s.Departments, s.Employees)
	}
	if s.GeneratedAt.Hour() != 12 {
		t.Errorf("GeneratedAt = %v", s.GeneratedAt)
	}

	counts := s.Counts()
	for key, want := range map[string]int{
		"devices_available":  3,
		"devices_total":      6,
		"requests_completed": 5,
		"allocations_active": 2,
		"employees":          11,
	} {
		if counts[key] != want {
			t.Errorf("Counts()[%q] = %d, want %d", key, counts[key], want)
		}
	}
}

func TestReporter_SummaryError(t *testing.T) {
	boom := errors.New("disk gone")

	_, err := newTestReporter(t, &fakeSources{requestErr: boom}).Summary(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Summary() error = %v, want %v", err, boom)
	}
}

func TestNewReporter_RequiresSources(t *testing.T) {
	if _, err := NewReporter(Sources{}); err == nil {
		t.Error("NewReporter() with no sources should fail")
	}
}

func TestScheduler_RunOnce(t *testing.T) {
	var got []*Summary
	failing := SinkFunc(func(context.Context, *Summary) error { return errors.New("sink down") })
	recording := SinkFunc(func(_ context.Context, s *Summary) error {
		got = append(got, s)
		return nil
	})

	sched, err := NewScheduler(newTestReporter(t, &fakeSources{}), "@every 1h", failing, recording)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	if sched.Last() != nil {
		t.Error("Last() before any run should be nil")
	}

	sched.RunOnce(context.Background())

	if len(got) != 1 {
		t.Fatalf("recording sink called %d times, want 1 despite earlier failure", len(got))
	}
	if sched.Last() != got[0] {
		t.Error("Last() should return the recorded summary")
	}
}

func TestScheduler_SummaryFailureSkipsSinks(t *testing.T) {
	called := false
	sink := SinkFunc(func(context.Context, *Summary) error {
		called = true
		return nil
	})

	sched, err := NewScheduler(newTestReporter(t, &fakeSources{deviceErr: errors.New("x")}), "*/5 * * * *", sink)
	if err != nil {
		t.Fatalf("NewScheduler() error = %v", err)
	}
	sched.RunOnce(context.Background())

	if called || sched.Last() != nil {
		t.Error("sinks should not run when the summary fails")
	}
}

func TestScheduler_StartStop(t *testing.T) {
	runs := make(chan struct{}, 1)
	sink := SinkFunc(func(context.Context, *Summary) error {
		select {
		case runs <- struct{}{}:
		default:
		}
		return nil
	})

	sched, err := NewScheduler(newTestReporter(t, &fakeSources{}), "@every 1h", sink)
	if err != nil {
		t.Fatal(err)
	}
	sched.Start(context.Background())

	select {
	case <-runs:
	default:
		t.Error("Start should record a snapshot immediately")
	}

	select {
	case <-sched.Stop().Done():
	case <-time.After(time.Second):
		t.Error("Stop() did not finish")
	}
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	if _, err := NewScheduler(newTestReporter(t, &fakeSources{}), "every tuesday"); err == nil {
		t.Error("NewScheduler() with invalid schedule should fail")
	}
}
