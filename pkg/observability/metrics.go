package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder receives per-operation timings from the command and query buses
type Recorder interface {
	RecordOperation(ctx context.Context, kind, name string, duration time.Duration, err error)
}

// Collector holds the Prometheus metrics of the service. Each collector
// owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Operations        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	PeopleMutations *prometheus.CounterVec
	CityLookups     *prometheus.CounterVec
	LayoutTicks     prometheus.Histogram
}

// NewCollector creates and registers all metrics under namespace
func NewCollector(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Commands and queries dispatched, by outcome",
		}, []string{"kind", "name", "status"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Command and query latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "name"}),
		PeopleMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "people_mutations_total",
			Help:      "People added, updated and removed",
		}, []string{"action"}),
		CityLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "city_lookups_total",
			Help:      "City searches by how they were served",
		}, []string{"source"}),
		LayoutTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "layout_ticks",
			Help:      "Force simulation ticks per layout request",
			Buckets:   []float64{10, 50, 100, 200, 300, 500, 1000, 2000},
		}),
	}

	c.registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Operations,
		c.OperationDuration,
		c.PeopleMutations,
		c.CityLookups,
		c.LayoutTicks,
	)
	return c
}

// Registry returns the collector's registry
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordOperation implements Recorder
func (c *Collector) RecordOperation(_ context.Context, kind, name string, duration time.Duration, err error) {
	c.Operations.WithLabelValues(kind, name, statusLabel(err)).Inc()
	c.OperationDuration.WithLabelValues(kind, name).Observe(duration.Seconds())
}

// CityLookup counts one city search by source
func (c *Collector) CityLookup(source string) {
	c.CityLookups.WithLabelValues(source).Inc()
}

// PersonMutation counts one add, update or remove
func (c *Collector) PersonMutation(action string) {
	c.PeopleMutations.WithLabelValues(action).Inc()
}

// LayoutRun records how many force ticks one layout request took
func (c *Collector) LayoutRun(ticks int) {
	c.LayoutTicks.Observe(float64(ticks))
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Recorders fans one observation out to several sinks
type Recorders []Recorder

// RecordOperation implements Recorder
func (rs Recorders) RecordOperation(ctx context.Context, kind, name string, duration time.Duration, err error) {
	for _, r := range rs {
		if r != nil {
			r.RecordOperation(ctx, kind, name, duration, err)
		}
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
