// Package reporting builds the inventory and usage summary and runs it on
// a cron schedule.
//
// A summary counts devices and requests by status, active and returned
// allocations, and directory size. The scheduled job hands each summary
// to the configured sinks (Prometheus gauges, InfluxDB snapshot point).
package reporting
