package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "assetflow"

// Metrics holds the service's collectors.
type Metrics struct {
	registry *prometheus.Registry

	lifecycleEvents *prometheus.CounterVec
	devices         *prometheus.GaugeVec
	requests        *prometheus.GaugeVec
	allocations     *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New registers all collectors, plus the Go runtime and process
// collectors, on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		lifecycleEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_events_total",
			Help:      "Committed lifecycle operations by event type.",
		}, []string{"event"}),
		devices: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "devices",
			Help:      "Devices by status at the last inventory snapshot.",
		}, []string{"status"}),
		requests: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests",
			Help:      "Allocation requests by status at the last inventory snapshot.",
		}, []string{"status"}),
		allocations: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "allocations",
			Help:      "Allocations by state (active, returned) at the last inventory snapshot.",
		}, []string{"state"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveLifecycleEvent counts one committed lifecycle operation.
func (m *Metrics) ObserveLifecycleEvent(eventType string) {
	m.lifecycleEvents.WithLabelValues(eventType).Inc()
}

// Inventory is the set of gauges refreshed by the reporting job.
type Inventory struct {
	Devices     map[string]int
	Requests    map[string]int
	Allocations map[string]int
}

// SetInventory replaces the inventory gauges. Labels absent from inv are
// dropped rather than left at a stale value.
func (m *Metrics) SetInventory(inv Inventory) {
	setAll(m.devices, inv.Devices)
	setAll(m.requests, inv.Requests)
	setAll(m.allocations, inv.Allocations)
}

func setAll(vec *prometheus.GaugeVec, values map[string]int) {
	vec.Reset()
	for label, n := range values {
		vec.WithLabelValues(label).Set(float64(n))
	}
}
