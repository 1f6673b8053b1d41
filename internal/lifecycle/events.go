package lifecycle

import (
	"context"
	"time"

	"github.com/nerrad567/assetflow-core/internal/allocation"
	"github.com/nerrad567/assetflow-core/internal/device"
)

// EventType names a completed lifecycle transition.
type EventType string

// Lifecycle event types.
const (
	EventRequestApproved     EventType = "request.approved"
	EventRequestRejected     EventType = "request.rejected"
	EventDeviceReturned      EventType = "device.returned"
	EventDeviceStatusChanged EventType = "device.status_changed"
	EventDeviceRemoved       EventType = "device.removed"
)

// Event describes a transition after it has been committed.
type Event struct {
	Type         EventType            `json:"type"`
	RequestID    string               `json:"request_id,omitempty"`
	DeviceID     string               `json:"device_id"`
	AllocationID string               `json:"allocation_id,omitempty"`
	EmployeeID   string               `json:"employee_id,omitempty"`
	Actor        Actor                `json:"actor"`
	Condition    allocation.Condition `json:"condition,omitempty"`
	DeviceStatus device.Status        `json:"device_status,omitempty"`
	At           time.Time            `json:"at"`
}

// Notifier observes committed lifecycle events. A failing notifier is
// logged and never undoes the transition.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, e Event) error

// Notify calls f(ctx, e).
func (f NotifierFunc) Notify(ctx context.Context, e Event) error {
	return f(ctx, e)
}
