// Package observability exposes the Prometheus metrics collector used across
// the service.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Global collector instance for singleton pattern
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	registry *prometheus.Registry

	// Explorer metrics
	RefreshCycles    prometheus.Counter
	RefreshFailures  prometheus.Counter
	DiscoveryRuns    prometheus.Counter
	UpstreamSkips    *prometheus.CounterVec
	UniverseEntities *prometheus.GaugeVec
	InsightsHeld     prometheus.Gauge

	// Query dispatch metrics
	QueryCount    *prometheus.CounterVec
	QueryErrors   *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	// Singleton to avoid duplicate registration in tests
	collectorMutex.Lock()
	defer collectorMutex.Unlock()

	if globalCollector != nil {
		return globalCollector
	}

	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		RefreshCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "Total number of completed insight refresh cycles",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_failures_total",
			Help:      "Total number of refresh cycles that fell back to an alert insight",
		}),
		DiscoveryRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_runs_total",
			Help:      "Total number of upstream discovery runs",
		}),
		UpstreamSkips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_skips_total",
			Help:      "Pages, sources, and categories skipped during discovery",
		}, []string{"domain"}),
		UniverseEntities: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "universe_entities",
			Help:      "Entities currently held per domain",
		}, []string{"domain"}),
		InsightsHeld: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "insights_held",
			Help:      "Insights currently retained in the rolling list",
		}),
		QueryCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_count_total",
			Help:      "Queries dispatched through the query bus",
		}, []string{"query"}),
		QueryErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_errors_total",
			Help:      "Queries that returned an error",
		}, []string{"query"}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query handler duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
	}

	registry.MustRegister(
		c.RefreshCycles,
		c.RefreshFailures,
		c.DiscoveryRuns,
		c.UpstreamSkips,
		c.UniverseEntities,
		c.InsightsHeld,
		c.QueryCount,
		c.QueryErrors,
		c.QueryDuration,
	)

	globalCollector = c
	return c
}

// Registry returns the collector's registry for the /metrics handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StartTimer implements the query bus Metrics interface.
func (c *Collector) StartTimer(metric, label string) Timer {
	start := time.Now()
	return timerFunc(func() {
		if metric == "query_duration" {
			c.QueryDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		}
	})
}

// Increment implements the query bus Metrics interface.
func (c *Collector) Increment(metric, label string) {
	switch metric {
	case "query_count":
		c.QueryCount.WithLabelValues(label).Inc()
	case "query_errors":
		c.QueryErrors.WithLabelValues(label).Inc()
	}
}

// Timer measures one operation.
type Timer interface {
	Stop()
}

type timerFunc func()

func (f timerFunc) Stop() { f() }
