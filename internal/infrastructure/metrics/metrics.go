// Package metrics exports run outcomes as Prometheus collectors and,
// optionally, pushes them to a Pushgateway after every run.
package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"GoldenTickets/internal/domain"
	"GoldenTickets/internal/ports"
)

const (
	namespace = "golden_tickets"
	subsystem = "reconciler"
)

// Metrics holds the run collectors.
type Metrics struct {
	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	items        *prometheus.CounterVec
	lastRun      prometheus.Gauge
	lastSlots    prometheus.Gauge
	lastStale    prometheus.Gauge
	skipped      prometheus.Counter
	failedDelete prometheus.Counter
}

// MustNewMetrics registers the collectors with reg and panics on conflicts.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "runs_total",
			Help: "Reconciliation runs by final stage and outcome.",
		}, []string{"stage", "outcome", "mode"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name:    "run_duration_seconds",
			Help:    "Wall time of a reconciliation run.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "entries_total",
			Help: "Calendar entries touched, by action.",
		}, []string{"action"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		lastSlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "last_run_free_slots",
			Help: "Free golden-hour slots projected by the last run.",
		}),
		lastStale: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "last_run_stale_entries",
			Help: "Stale entries found by the last run.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "skipped_activity_total",
			Help: "Activity records skipped for invalid timestamps.",
		}),
		failedDelete: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: subsystem,
			Name: "failed_deletions_total",
			Help: "Stale entries whose deletion failed.",
		}),
	}

	reg.MustRegister(m.runs, m.runDuration, m.items, m.lastRun, m.lastSlots, m.lastStale, m.skipped, m.failedDelete)
	return m
}

// Observe folds a finished report into the collectors.
func (m *Metrics) Observe(report domain.Report) {
	if m == nil {
		return
	}

	outcome := "success"
	if report.Stage != domain.StageDone {
		outcome = "failure"
	}
	mode := "apply"
	if report.DryRun {
		mode = "plan"
	}

	m.runs.WithLabelValues(string(report.Stage), outcome, mode).Inc()
	if !report.StartedAt.IsZero() && report.FinishedAt.After(report.StartedAt) {
		m.runDuration.WithLabelValues(outcome).Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}
	if !report.DryRun {
		m.items.WithLabelValues("created").Add(float64(len(report.Created)))
		m.items.WithLabelValues("deleted").Add(float64(len(report.Deleted)))
	}
	m.items.WithLabelValues("unassigned").Add(float64(len(report.Unassigned)))
	m.skipped.Add(float64(len(report.SkippedRecords)))

	for _, n := range report.Notices {
		var delErr *domain.DeletionError
		if errors.As(n, &delErr) {
			m.failedDelete.Add(float64(len(delErr.Failed)))
		}
	}

	if !report.FinishedAt.IsZero() {
		m.lastRun.Set(float64(report.FinishedAt.Unix()))
	}
	m.lastSlots.Set(float64(len(report.Slots)))
	m.lastStale.Set(float64(len(report.Stale)))
}

// Recorder implements ports.RunRecorder. When a Pushgateway URL is set the
// registry is pushed after each observation.
type Recorder struct {
	metrics *Metrics
	pusher  *push.Pusher
}

var _ ports.RunRecorder = (*Recorder)(nil)

// NewRecorder registers collectors on a fresh registry. pushURL may be empty.
func NewRecorder(pushURL, job string) *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{metrics: MustNewMetrics(reg)}
	if pushURL != "" {
		if job == "" {
			job = namespace
		}
		r.pusher = push.New(pushURL, job).Gatherer(reg)
	}
	return r
}

// Metrics exposes the underlying collectors.
func (r *Recorder) Metrics() *Metrics {
	return r.metrics
}

// Record observes report and pushes when configured.
func (r *Recorder) Record(ctx context.Context, report domain.Report) error {
	r.metrics.Observe(report)

	if r.pusher == nil {
		return nil
	}
	if err := r.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
