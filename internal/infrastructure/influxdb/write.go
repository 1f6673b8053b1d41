package influxdb

import (
	"context"
	"fmt"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementLifecycle = "lifecycle_events"
	MeasurementInventory = "inventory_snapshot"
)

// WriteLifecycleEvent records one lifecycle event. condition is only set
// for returns. Non-blocking; errors surface through SetOnError.
func (c *Client) WriteLifecycleEvent(eventType, deviceID, condition string, at time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(lifecyclePoint(eventType, deviceID, condition, at))
}

// WriteInventorySnapshot writes the flattened inventory counts
// (e.g. "devices_available", "allocations_active") as one point and waits
// for the server to accept it.
func (c *Client) WriteInventorySnapshot(ctx context.Context, instanceID string, counts map[string]int, at time.Time) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if len(counts) == 0 {
		return nil
	}
	if err := c.blockingWrite.WritePoint(ctx, inventoryPoint(instanceID, counts, at)); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrWriteFailed, MeasurementInventory, err)
	}
	return nil
}

func lifecyclePoint(eventType, deviceID, condition string, at time.Time) *write.Point {
	fields := map[string]any{"count": int64(1)}
	if condition != "" {
		fields["condition"] = condition
	}
	return write.NewPoint(MeasurementLifecycle,
		map[string]string{
			"event":     eventType,
			"device_id": deviceID,
		},
		fields,
		at)
}

func inventoryPoint(instanceID string, counts map[string]int, at time.Time) *write.Point {
	fields := make(map[string]any, len(counts))
	for name, n := range counts {
		fields[name] = int64(n)
	}
	return write.NewPoint(MeasurementInventory,
		map[string]string{"instance": instanceID},
		fields,
		at)
}
