// Package influxdb writes AssetFlow telemetry to InfluxDB v2.
//
// Two measurements are written:
//
//	lifecycle_events    tags: event, device_id   fields: count, condition
//	inventory_snapshot  tags: instance           fields: one per counter
//
// Lifecycle points are batched per the batch_size and flush_interval
// settings. InfluxDB is optional: Connect returns ErrDisabled when
// influxdb.enabled is false and callers run without telemetry.
package influxdb
