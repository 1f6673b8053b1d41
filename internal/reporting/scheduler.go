package reporting

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sink receives each scheduled summary.
type Sink interface {
	RecordSnapshot(ctx context.Context, s *Summary) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, s *Summary) error

// RecordSnapshot calls f(ctx, s).
func (f SinkFunc) RecordSnapshot(ctx context.Context, s *Summary) error {
	return f(ctx, s)
}

// Logger is the subset of logging.Logger the scheduler uses.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

const snapshotTimeout = 30 * time.Second

// Scheduler runs the snapshot job on a standard cron schedule
// ("*/15 * * * *", "@every 15m").
type Scheduler struct {
	cron     *cron.Cron
	reporter *Reporter
	sinks    []Sink
	logger   Logger

	mu   sync.RWMutex
	last *Summary
}

// NewScheduler parses schedule and registers the snapshot job. The job
// does not run until Start.
func NewScheduler(reporter *Reporter, schedule string, sinks ...Sink) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		reporter: reporter,
		sinks:    sinks,
		logger:   noopLogger{},
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("reporting: invalid schedule %q: %w", schedule, err)
	}
	return s, nil
}

// SetLogger sets the logger.
func (s *Scheduler) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// Start runs one snapshot immediately, then starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.RunOnce(ctx)
	s.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running
// job has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunOnce computes a summary and hands it to every sink. Sink failures
// are logged; the remaining sinks still run.
func (s *Scheduler) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	summary, err := s.reporter.Summary(ctx)
	if err != nil {
		s.logger.Error("inventory snapshot failed", "error", err)
		return
	}

	s.mu.Lock()
	s.last = summary
	s.mu.Unlock()

	for i, sink := range s.sinks {
		if err := sink.RecordSnapshot(ctx, summary); err != nil {
			s.logger.Warn("snapshot sink failed", "sink", i, "error", err)
		}
	}
	s.logger.Info("inventory snapshot recorded",
		"devices", summary.Devices.Total,
		"active_allocations", summary.Allocations.Active)
}

// Last returns the most recent scheduled summary, or nil before the first run.
func (s *Scheduler) Last() *Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}
