package reporting

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nerrad567/assetflow-core/internal/device"
	"github.com/nerrad567/assetflow-core/internal/request"
)

// DeviceStats is satisfied by *device.Registry.
type DeviceStats interface {
	Stats(ctx context.Context) (*device.Stats, error)
}

// RequestCounter is satisfied by *request.Manager.
type RequestCounter interface {
	CountByStatus(ctx context.Context, status request.Status) (int, error)
}

// AllocationCounter is satisfied by *allocation.Manager.
type AllocationCounter interface {
	CountActive(ctx context.Context) (int, error)
	CountReturned(ctx context.Context) (int, error)
}

// DirectoryCounter is satisfied by *directory.Directory.
type DirectoryCounter interface {
	CountDepartments(ctx context.Context) (int, error)
	CountEmployees(ctx context.Context) (int, error)
}

// Sources are the components a summary reads from.
type Sources struct {
	Devices     DeviceStats
	Requests    RequestCounter
	Allocations AllocationCounter
	Directory   DirectoryCounter
}

// Breakdown is a total with per-status counts.
type Breakdown struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

// AllocationCounts splits allocations by whether the device is back.
type AllocationCounts struct {
	Active   int `json:"active"`
	Returned int `json:"returned"`
}

// Summary is a point-in-time view of the inventory.
type Summary struct {
	GeneratedAt time.Time        `json:"generated_at"`
	Devices     Breakdown        `json:"devices"`
	Requests    Breakdown        `json:"requests"`
	Allocations AllocationCounts `json:"allocations"`
	Departments int              `json:"departments"`
	Employees   int              `json:"employees"`
}

// Counts flattens s into named counters such as "devices_available" and
// "allocations_active".
func (s *Summary) Counts() map[string]int {
	out := map[string]int{
		"devices_total":        s.Devices.Total,
		"requests_total":       s.Requests.Total,
		"allocations_active":   s.Allocations.Active,
		"allocations_returned": s.Allocations.Returned,
		"departments":          s.Departments,
		"employees":            s.Employees,
	}
	for status, n := range s.Devices.ByStatus {
		out["devices_"+status] = n
	}
	for status, n := range s.Requests.ByStatus {
		out["requests_"+status] = n
	}
	return out
}

// Reporter computes summaries.
type Reporter struct {
	src Sources
	now func() time.Time
}

// NewReporter creates a Reporter over src. Every source is required.
func NewReporter(src Sources) (*Reporter, error) {
	if src.Devices == nil || src.Requests == nil || src.Allocations == nil || src.Directory == nil {
		return nil, fmt.Errorf("reporting: all sources are required")
	}
	return &Reporter{src: src, now: time.Now}, nil
}

// Summary reads every source concurrently. The first failure cancels the
// rest and is returned.
func (r *Reporter) Summary(ctx context.Context) (*Summary, error) {
	s := &Summary{GeneratedAt: r.now().UTC()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := r.src.Devices.Stats(gctx)
		if err != nil {
			return fmt.Errorf("device stats: %w", err)
		}
		s.Devices = Breakdown{Total: stats.Total, ByStatus: make(map[string]int, len(stats.ByStatus))}
		for status, n := range stats.ByStatus {
			s.Devices.ByStatus[string(status)] = n
		}
		return nil
	})

	g.Go(func() error {
		b := Breakdown{ByStatus: make(map[string]int)}
		for _, status := range request.AllStatuses() {
			n, err := r.src.Requests.CountByStatus(gctx, status)
			if err != nil {
				return fmt.Errorf("requests %s: %w", status, err)
			}
			b.ByStatus[string(status)] = n
			b.Total += n
		}
		s.Requests = b
		return nil
	})

	g.Go(func() (err error) {
		if s.Allocations.Active, err = r.src.Allocations.CountActive(gctx); err != nil {
			return fmt.Errorf("active allocations: %w", err)
		}
		if s.Allocations.Returned, err = r.src.Allocations.CountReturned(gctx); err != nil {
			return fmt.Errorf("returned allocations: %w", err)
		}
		return nil
	})

	g.Go(func() (err error) {
		if s.Departments, err = r.src.Directory.CountDepartments(gctx); err != nil {
			return fmt.Errorf("departments: %w", err)
		}
		if s.Employees, err = r.src.Directory.CountEmployees(gctx); err != nil {
			return fmt.Errorf("employees: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reporting: %w", err)
	}
	return s, nil
}
