// Package metrics exposes AssetFlow's Prometheus metrics.
//
// Metrics live on a private registry rather than the global default, so
// tests can build as many instances as they like:
//
//	assetflow_lifecycle_events_total{event}
//	assetflow_devices{status}
//	assetflow_requests{status}
//	assetflow_allocations{state}
//	assetflow_http_requests_total{method,route,status}
//	assetflow_http_request_duration_seconds{method,route}
package metrics
