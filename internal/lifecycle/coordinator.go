package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/assetflow-core/internal/allocation"
	"github.com/nerrad567/assetflow-core/internal/device"
	"github.com/nerrad567/assetflow-core/internal/request"
)

// DeviceStore is the device registry as seen by the coordinator.
type DeviceStore interface {
	Find(ctx context.Context, id string) (*device.Device, error)
	UpdateStatus(ctx context.Context, id string, status device.Status) error
	Delete(ctx context.Context, id string) error
}

// RequestStore is the request manager as seen by the coordinator.
type RequestStore interface {
	Find(ctx context.Context, id string) (*request.Request, error)
	SetStatus(ctx context.Context, id string, status request.Status) error
	CountByDevice(ctx context.Context, deviceID string) (int, error)
}

// AllocationStore is the allocation manager as seen by the coordinator.
type AllocationStore interface {
	Create(ctx context.Context, requestID, issuedBy string) (string, error)
	RecordReturn(ctx context.Context, id string, condition allocation.Condition, note, receivedBy string) error
	IsDeviceBeingAllocated(ctx context.Context, deviceID string) (bool, error)
	FindCurrentForDevice(ctx context.Context, deviceID string) (*allocation.Allocation, bool, error)
	Find(ctx context.Context, id string) (*allocation.Allocation, error)
	Cancel(ctx context.Context, id string) error
	Reopen(ctx context.Context, id string) error
}

// Logger is the logging interface used by the Coordinator.
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

// Deps holds the coordinator's collaborators.
type Deps struct {
	Devices     DeviceStore
	Requests    RequestStore
	Allocations AllocationStore

	// Locker defaults to a new KeyedLocker.
	Locker Locker

	// LockTimeout bounds the wait for a device lock. Zero waits as long as ctx allows.
	LockTimeout time.Duration

	Logger    Logger
	Notifiers []Notifier

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Result carries the state of the entities an operation touched, read
// after the operation committed. Fields the operation did not involve are nil.
type Result struct {
	Request    *request.Request       `json:"request,omitempty"`
	Allocation *allocation.Allocation `json:"allocation,omitempty"`
	Device     *device.Device         `json:"device,omitempty"`
}

// Coordinator applies request, allocation and device changes together.
//
// Every mutating operation holds the device's lock until its changes are
// applied; notifiers run after the lock is released.
// If a later step fails, earlier steps are undone before the error is
// returned; failures while undoing are joined into that error.
type Coordinator struct {
	devices     DeviceStore
	requests    RequestStore
	allocations AllocationStore
	locker      Locker
	lockTimeout time.Duration
	logger      Logger
	notifiers   []Notifier
	now         func() time.Time
}

// New creates a Coordinator.
func New(deps Deps) (*Coordinator, error) {
	if deps.Devices == nil || deps.Requests == nil || deps.Allocations == nil {
		return nil, errors.New("lifecycle: devices, requests and allocations are required")
	}

	c := &Coordinator{
		devices:     deps.Devices,
		requests:    deps.Requests,
		allocations: deps.Allocations,
		locker:      deps.Locker,
		lockTimeout: deps.LockTimeout,
		logger:      deps.Logger,
		notifiers:   deps.Notifiers,
		now:         deps.Clock,
	}
	if c.locker == nil {
		c.locker = NewKeyedLocker()
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// AddNotifier registers an observer. Not safe to call concurrently with operations.
func (c *Coordinator) AddNotifier(n Notifier) {
	c.notifiers = append(c.notifiers, n)
}

// StatusForCondition maps a return condition to the device's next status.
func StatusForCondition(cond allocation.Condition) device.Status {
	if cond == allocation.ConditionGood {
		return device.StatusAvailable
	}
	return device.StatusMaintenance
}

// Approve moves a pending request to approved, opens its allocation and
// marks the device in use.
func (c *Coordinator) Approve(ctx context.Context, requestID string, actor Actor) (*Result, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}

	req, err := c.requests.Find(ctx, requestID)
	if err != nil {
		return nil, err
	}

	unlock, err := c.lock(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// The request may have been decided while we waited for the lock.
	req, err = c.requests.Find(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != request.StatusPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrRequestNotPending, req.ID, req.Status)
	}

	busy, err := c.allocations.IsDeviceBeingAllocated(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, fmt.Errorf("%w: %s", ErrDeviceBusy, req.DeviceID)
	}

	dev, err := c.devices.Find(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if dev.Status != device.StatusAvailable {
		return nil, fmt.Errorf("%w: %s is %s", ErrDeviceUnavailable, dev.ID, dev.Status)
	}

	if err := c.requests.SetStatus(ctx, req.ID, request.StatusApproved); err != nil {
		return nil, fmt.Errorf("approving request: %w", err)
	}

	revertRequest := func(ctx context.Context) error {
		return c.requests.SetStatus(ctx, req.ID, request.StatusPending)
	}

	allocID, err := c.allocations.Create(ctx, req.ID, actor.ID)
	if err != nil {
		return nil, c.rollback(ctx, "approve", fmt.Errorf("creating allocation: %w", err), revertRequest)
	}

	if err := c.devices.UpdateStatus(ctx, dev.ID, device.StatusInUse); err != nil {
		cancelAllocation := func(ctx context.Context) error {
			return c.allocations.Cancel(ctx, allocID)
		}
		return nil, c.rollback(ctx, "approve", fmt.Errorf("marking device in use: %w", err),
			cancelAllocation, revertRequest)
	}

	c.logger.Info("request approved",
		"request_id", req.ID,
		"device_id", dev.ID,
		"allocation_id", allocID,
		"actor", actor.ID,
	)

	result := c.snapshot(ctx, req.ID, allocID, dev.ID)
	unlock()
	c.notify(ctx, Event{
		Type:         EventRequestApproved,
		RequestID:    req.ID,
		DeviceID:     dev.ID,
		AllocationID: allocID,
		EmployeeID:   req.EmployeeID,
		Actor:        actor,
		DeviceStatus: device.StatusInUse,
	})
	return result, nil
}

// Reject moves a pending request to rejected. Devices and allocations are
// not touched.
func (c *Coordinator) Reject(ctx context.Context, requestID string, actor Actor) (*Result, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}

	req, err := c.requests.Find(ctx, requestID)
	if err != nil {
		return nil, err
	}

	unlock, err := c.lock(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	req, err = c.requests.Find(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != request.StatusPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrRequestNotPending, req.ID, req.Status)
	}

	if err := c.requests.SetStatus(ctx, req.ID, request.StatusRejected); err != nil {
		return nil, fmt.Errorf("rejecting request: %w", err)
	}

	c.logger.Info("request rejected", "request_id", req.ID, "device_id", req.DeviceID, "actor", actor.ID)

	result := c.snapshot(ctx, req.ID, "", "")
	unlock()
	c.notify(ctx, Event{
		Type:       EventRequestRejected,
		RequestID:  req.ID,
		DeviceID:   req.DeviceID,
		EmployeeID: req.EmployeeID,
		Actor:      actor,
	})
	return result, nil
}

// ReturnDevice closes the device's active allocation, completes the
// originating request and sets the device to available (good condition) or
// maintenance (anything else).
func (c *Coordinator) ReturnDevice(ctx context.Context, deviceID string, condition allocation.Condition, note string, actor Actor) (*Result, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if !condition.Valid() {
		return nil, fmt.Errorf("%w: %q", allocation.ErrInvalidCondition, condition)
	}

	unlock, err := c.lock(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	current, ok, err := c.allocations.FindCurrentForDevice(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNothingToReturn, deviceID)
	}

	if err := c.allocations.RecordReturn(ctx, current.ID, condition, note, actor.ID); err != nil {
		return nil, fmt.Errorf("recording return: %w", err)
	}

	reopen := func(ctx context.Context) error {
		return c.allocations.Reopen(ctx, current.ID)
	}

	if err := c.requests.SetStatus(ctx, current.RequestID, request.StatusCompleted); err != nil {
		return nil, c.rollback(ctx, "return", fmt.Errorf("completing request: %w", err), reopen)
	}

	next := StatusForCondition(condition)
	if err := c.devices.UpdateStatus(ctx, deviceID, next); err != nil {
		revertRequest := func(ctx context.Context) error {
			return c.requests.SetStatus(ctx, current.RequestID, request.StatusApproved)
		}
		return nil, c.rollback(ctx, "return", fmt.Errorf("updating device status: %w", err),
			revertRequest, reopen)
	}

	c.logger.Info("device returned",
		"device_id", deviceID,
		"allocation_id", current.ID,
		"condition", condition,
		"device_status", next,
		"actor", actor.ID,
	)

	result := c.snapshot(ctx, current.RequestID, current.ID, deviceID)
	unlock()
	c.notify(ctx, Event{
		Type:         EventDeviceReturned,
		RequestID:    current.RequestID,
		DeviceID:     deviceID,
		AllocationID: current.ID,
		EmployeeID:   current.EmployeeID,
		Actor:        actor,
		Condition:    condition,
		DeviceStatus: next,
	})
	return result, nil
}

// ChangeDeviceStatus sets the status of a device that nobody holds, for
// example to take it out of maintenance. in_use cannot be set this way.
func (c *Coordinator) ChangeDeviceStatus(ctx context.Context, deviceID string, status device.Status, actor Actor) (*Result, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", device.ErrInvalidStatus, status)
	}
	if status == device.StatusInUse {
		return nil, fmt.Errorf("%w: %s", ErrStatusNotSettable, status)
	}

	unlock, err := c.lock(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	dev, err := c.devices.Find(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	busy, err := c.allocations.IsDeviceBeingAllocated(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, fmt.Errorf("%w: %s", ErrDeviceBusy, deviceID)
	}

	if dev.Status == status {
		return &Result{Device: dev}, nil
	}

	if err := c.devices.UpdateStatus(ctx, deviceID, status); err != nil {
		return nil, fmt.Errorf("updating device status: %w", err)
	}

	c.logger.Info("device status changed",
		"device_id", deviceID,
		"from", dev.Status,
		"to", status,
		"actor", actor.ID,
	)

	result := c.snapshot(ctx, "", "", deviceID)
	unlock()
	c.notify(ctx, Event{
		Type:         EventDeviceStatusChanged,
		DeviceID:     deviceID,
		Actor:        actor,
		DeviceStatus: status,
	})
	return result, nil
}

// RemoveDevice deletes a device that has never been requested.
func (c *Coordinator) RemoveDevice(ctx context.Context, deviceID string, actor Actor) error {
	if err := actor.validate(); err != nil {
		return err
	}

	unlock, err := c.lock(ctx, deviceID)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := c.devices.Find(ctx, deviceID); err != nil {
		return err
	}

	busy, err := c.allocations.IsDeviceBeingAllocated(ctx, deviceID)
	if err != nil {
		return err
	}
	if busy {
		return fmt.Errorf("%w: %s", ErrDeviceBusy, deviceID)
	}

	n, err := c.requests.CountByDevice(ctx, deviceID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %s has %d requests", ErrDeviceHasHistory, deviceID, n)
	}

	if err := c.devices.Delete(ctx, deviceID); err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}

	c.logger.Info("device removed", "device_id", deviceID, "actor", actor.ID)
	unlock()
	c.notify(ctx, Event{Type: EventDeviceRemoved, DeviceID: deviceID, Actor: actor})
	return nil
}

func (c *Coordinator) lock(ctx context.Context, deviceID string) (func(), error) {
	if c.lockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.lockTimeout)
		defer cancel()
	}
	return c.locker.Lock(ctx, "device:"+deviceID)
}

// rollback runs the undo steps in order and returns cause joined with any
// undo failures. Undo steps run even if ctx has been cancelled.
func (c *Coordinator) rollback(ctx context.Context, op string, cause error, undo ...func(context.Context) error) error {
	uctx := context.WithoutCancel(ctx)
	errs := []error{cause}
	for _, step := range undo {
		if err := step(uctx); err != nil {
			c.logger.Error("lifecycle rollback step failed", "op", op, "error", err)
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
	}
	c.logger.Warn("lifecycle operation rolled back", "op", op, "error", cause)
	return errors.Join(errs...)
}

// snapshot reads back the touched entities. Read failures are logged and
// leave the field nil; the operation itself has already committed.
func (c *Coordinator) snapshot(ctx context.Context, requestID, allocationID, deviceID string) *Result {
	result := &Result{}
	var err error
	if requestID != "" {
		if result.Request, err = c.requests.Find(ctx, requestID); err != nil {
			c.logger.Warn("reading request after commit", "request_id", requestID, "error", err)
		}
	}
	if allocationID != "" {
		if result.Allocation, err = c.allocations.Find(ctx, allocationID); err != nil {
			c.logger.Warn("reading allocation after commit", "allocation_id", allocationID, "error", err)
		}
	}
	if deviceID != "" {
		if result.Device, err = c.devices.Find(ctx, deviceID); err != nil {
			c.logger.Warn("reading device after commit", "device_id", deviceID, "error", err)
		}
	}
	return result
}

func (c *Coordinator) notify(ctx context.Context, e Event) {
	e.At = c.now().UTC()
	for _, n := range c.notifiers {
		if err := n.Notify(ctx, e); err != nil {
			c.logger.Warn("lifecycle notifier failed", "event", e.Type, "device_id", e.DeviceID, "error", err)
		}
	}
}
