// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Probe run statuses.
const (
	StatusSuccess      = "success"
	StatusNetworkError = "network_error"
	StatusParseError   = "parse_error"
	StatusError        = "error"
)

// Metrics holds all Prometheus metrics for one probe process.
type Metrics struct {
	registry *prometheus.Registry

	// RPC metrics
	RPCCallLatency *prometheus.HistogramVec

	// Probe metrics
	ProbeRuns     *prometheus.CounterVec
	ProbeLogLines prometheus.Gauge

	// Health metrics
	LastSuccessfulProbe prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on a private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "pool_fee_probe"
	}

	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "RPC call latency in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"method"}),

		ProbeRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "probe",
			Name:      "runs_total",
			Help:      "Total number of probe runs by outcome",
		}, []string{"status"}),
		ProbeLogLines: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "probe",
			Name:      "log_lines",
			Help:      "Number of program log lines returned by the last simulation",
		}),

		LastSuccessfulProbe: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_probe_timestamp",
			Help:      "Unix timestamp of last successful probe",
		}),
	}
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRPCLatency records RPC call latency.
func (m *Metrics) RecordRPCLatency(method string, d time.Duration) {
	m.RPCCallLatency.WithLabelValues(method).Observe(d.Seconds())
}

// RecordProbe records the outcome of a probe run.
func (m *Metrics) RecordProbe(status string, logLines int) {
	m.ProbeRuns.WithLabelValues(status).Inc()
	if status == StatusSuccess {
		m.ProbeLogLines.Set(float64(logLines))
		m.LastSuccessfulProbe.SetToCurrentTime()
	}
}

// WriteTextfile writes all metrics in text exposition format to path,
// suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
