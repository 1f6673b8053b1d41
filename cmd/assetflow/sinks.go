package main

import (
	"context"

	"github.com/nerrad567/assetflow-core/internal/audit"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/metrics"
	"github.com/nerrad567/assetflow-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/assetflow-core/internal/lifecycle"
	"github.com/nerrad567/assetflow-core/internal/reporting"
)

// lifecycleNotifiers fans committed lifecycle events out to the audit trail
// and whichever of MQTT, InfluxDB and Prometheus are enabled (non-nil).
func lifecycleNotifiers(trail *audit.Trail, mqttClient *mqtt.Client, influxClient *influxdb.Client, m *metrics.Metrics) []lifecycle.Notifier {
	var out []lifecycle.Notifier
	if trail != nil {
		out = append(out, trail)
	}
	if mqttClient != nil {
		out = append(out, lifecycle.NotifierFunc(func(_ context.Context, e lifecycle.Event) error {
			return mqttClient.PublishEvent(string(e.Type), e.DeviceID, e)
		}))
	}
	if influxClient != nil {
		out = append(out, lifecycle.NotifierFunc(func(_ context.Context, e lifecycle.Event) error {
			influxClient.WriteLifecycleEvent(string(e.Type), e.DeviceID, string(e.Condition), e.At)
			return nil
		}))
	}
	if m != nil {
		out = append(out, lifecycle.NotifierFunc(func(_ context.Context, e lifecycle.Event) error {
			m.ObserveLifecycleEvent(string(e.Type))
			return nil
		}))
	}
	return out
}

// snapshotSinks returns the destinations of the scheduled inventory summary.
func snapshotSinks(instanceID string, influxClient *influxdb.Client, m *metrics.Metrics) []reporting.Sink {
	var out []reporting.Sink
	if m != nil {
		out = append(out, reporting.SinkFunc(func(_ context.Context, s *reporting.Summary) error {
			m.SetInventory(inventory(s))
			return nil
		}))
	}
	if influxClient != nil {
		out = append(out, reporting.SinkFunc(func(ctx context.Context, s *reporting.Summary) error {
			return influxClient.WriteInventorySnapshot(ctx, instanceID, s.Counts(), s.GeneratedAt)
		}))
	}
	return out
}

// inventory converts a summary to the metrics gauge layout.
func inventory(s *reporting.Summary) metrics.Inventory {
	return metrics.Inventory{
		Devices:  s.Devices.ByStatus,
		Requests: s.Requests.ByStatus,
		Allocations: map[string]int{
			"active":   s.Allocations.Active,
			"returned": s.Allocations.Returned,
		},
	}
}
