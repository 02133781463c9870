package jobmetrics

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// JobMetrics holds the metrics of one CLI run. Every run starts from a fresh
// registry so a push describes only that run.
type JobMetrics struct {
	registry *prometheus.Registry
	pusher   Pusher

	rows        *prometheus.CounterVec
	duration    *prometheus.GaugeVec
	lastSuccess *prometheus.GaugeVec
	failures    *prometheus.CounterVec
}

func New(pusher Pusher) *JobMetrics {
	m := &JobMetrics{
		registry: prometheus.NewRegistry(),
		pusher:   pusher,
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storecogs_job_rows_total",
			Help: "Rows processed by the job, by dataset and outcome.",
		}, []string{"dataset", "outcome"}),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "storecogs_job_duration_seconds",
			Help: "Wall time of the last job run.",
		}, []string{"dataset", "command"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "storecogs_job_last_success_timestamp_seconds",
			Help: "Unix time of the last successful job run.",
		}, []string{"dataset", "command"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storecogs_job_failures_total",
			Help: "Job runs that ended with an error.",
		}, []string{"dataset", "command"}),
	}
	m.registry.MustRegister(m.rows, m.duration, m.lastSuccess, m.failures)
	return m
}

// Rows counts n rows with the given outcome. Zero is still recorded so the
// series exists on the gateway.
func (m *JobMetrics) Rows(dataset, outcome string, n int) {
	if m == nil || n < 0 {
		return
	}
	m.rows.WithLabelValues(normalizeLabel(dataset), normalizeLabel(outcome)).Add(float64(n))
}

// Finish records the end of a run at now.
func (m *JobMetrics) Finish(dataset, command string, elapsed time.Duration, now time.Time, err error) {
	if m == nil {
		return
	}
	ds, cmd := normalizeLabel(dataset), normalizeLabel(command)
	m.duration.WithLabelValues(ds, cmd).Set(elapsed.Seconds())
	if err != nil {
		m.failures.WithLabelValues(ds, cmd).Inc()
		return
	}
	m.lastSuccess.WithLabelValues(ds, cmd).Set(float64(now.Unix()))
}

// Push is a no-op without a pusher.
func (m *JobMetrics) Push(ctx context.Context) error {
	if m == nil || m.pusher == nil {
		return nil
	}
	return m.pusher.Push(ctx, m.registry)
}

func (m *JobMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return value
}
