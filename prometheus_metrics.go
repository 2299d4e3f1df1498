package workerpool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics is a MetricsPolicy that exports pool activity as
// Prometheus collectors.
type PrometheusMetrics struct {
	JobsSubmitted prometheus.Counter
	JobsExecuted  prometheus.Counter
	JobsPanicked  prometheus.Counter
	QueueLength   prometheus.Gauge
	ActiveWorkers prometheus.Gauge
}

// NewPrometheusMetrics creates the pool collectors under namespace and
// registers them with reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusMetrics(reg prometheus.Registerer, namespace string) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &PrometheusMetrics{
		JobsSubmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_submitted_total",
			Help:      "Total number of jobs submitted to the pool",
		}),
		JobsExecuted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_executed_total",
			Help:      "Total number of jobs that ran to completion",
		}),
		JobsPanicked: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_panicked_total",
			Help:      "Total number of jobs that panicked and terminated their worker",
		}),
		QueueLength: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "queue_length",
			Help:      "Jobs waiting in the dispatch channel",
		}),
		ActiveWorkers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "active_workers",
			Help:      "Workers currently running a job",
		}),
	}
}

func (m *PrometheusMetrics) IncQueued() {
	m.JobsSubmitted.Inc()
	m.QueueLength.Inc()
}

func (m *PrometheusMetrics) BatchDecQueued(n int64) { m.QueueLength.Sub(float64(n)) }
func (m *PrometheusMetrics) AddActive(delta int64)  { m.ActiveWorkers.Add(float64(delta)) }
func (m *PrometheusMetrics) IncExecuted()           { m.JobsExecuted.Inc() }
func (m *PrometheusMetrics) IncPanicked()           { m.JobsPanicked.Inc() }
