// File: server/metrics.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Prometheus instrumentation for the accept loop, connections and the
// executor.

package server

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/momentics/hioload-compat/internal/concurrency"
	"github.com/momentics/hioload-compat/protocol"
)

const metricsNamespace = "hioload"

// Metrics implements protocol.Observer on Prometheus collectors.
type Metrics struct {
	connsOpened  prometheus.Counter
	connsActive  prometheus.Gauge
	connLifetime prometheus.Histogram
	acceptErrors prometheus.Counter
	requests     *prometheus.CounterVec
	taskPanics   prometheus.Counter

	exec atomic.Pointer[concurrency.Executor]
}

var _ protocol.Observer = (*Metrics)(nil)

// NewMetrics registers the server collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	m := &Metrics{
		connsOpened: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "connections_opened_total",
			Help:      "Total number of accepted connections",
		}),
		connsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "connections_active",
			Help:      "Number of connections currently being served",
		}),
		connLifetime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "connection_duration_seconds",
			Help:      "Lifetime of served connections",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		acceptErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "accept_errors_total",
			Help:      "Total number of transient accept errors",
		}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "Total number of served requests",
		}, []string{"code"}),
		taskPanics: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "executor_task_panics_total",
			Help:      "Total number of recovered task panics",
		}),
	}
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "executor_workers",
		Help:      "Number of live executor workers",
	}, func() float64 {
		if e := m.exec.Load(); e != nil {
			return float64(e.NumWorkers())
		}
		return 0
	})
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "executor_inflight_tasks",
		Help:      "Tasks submitted but not yet finished",
	}, func() float64 {
		if e := m.exec.Load(); e != nil {
			return float64(e.Stats()["inflight_tasks"])
		}
		return 0
	})
	return m
}

// WatchExecutor points the executor gauges at e.
func (m *Metrics) WatchExecutor(e *concurrency.Executor) {
	m.exec.Store(e)
}

func (m *Metrics) ConnOpened() {
	m.connsOpened.Inc()
	m.connsActive.Inc()
}

func (m *Metrics) ConnClosed(lifetime time.Duration) {
	m.connsActive.Dec()
	m.connLifetime.Observe(lifetime.Seconds())
}

func (m *Metrics) AcceptFailed(error) {
	m.acceptErrors.Inc()
}

func (m *Metrics) RequestServed(status int) {
	m.requests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// TaskPanicked counts a recovered executor task panic.
func (m *Metrics) TaskPanicked(any) {
	m.taskPanics.Inc()
}

// withMetricsRoute serves reg on /metrics and everything else with next.
func withMetricsRoute(reg *prometheus.Registry, next http.Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/", next)
	return mux
}
