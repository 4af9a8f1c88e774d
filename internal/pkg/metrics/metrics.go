// Package metrics holds the Prometheus collectors of the reservation engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "classroom_booking"

type Metrics struct {
	ReservationsCreated  *prometheus.CounterVec
	ReservationsRefused  *prometheus.CounterVec
	ConflictsDetected    *prometheus.CounterVec
	Transitions          *prometheus.CounterVec
	AvailabilityChecks   prometheus.Counter
	CommitDuration       prometheus.Histogram
	ConcurrencyConflicts prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves them from gatherer.
func NewWithRegistry(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	m := &Metrics{
		ReservationsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_created_total",
			Help:      "Reservations committed, by origin (new or reactivated)",
		}, []string{"origin"}),
		ReservationsRefused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_refused_total",
			Help:      "Create and update requests refused, by error kind",
		}, []string{"operation", "kind"}),
		ConflictsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conflicts_detected_total",
			Help:      "Conflict records found, by source kind",
		}, []string{"kind"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservation_transitions_total",
			Help:      "Applied status transitions",
		}, []string{"from", "to"}),
		AvailabilityChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_checks_total",
			Help:      "Availability previews served",
		}),
		CommitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reservation_commit_duration_seconds",
			Help:      "Time spent holding the room lock while committing",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1},
		}),
		ConcurrencyConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concurrency_conflicts_total",
			Help:      "Commits or transitions lost to a concurrent writer",
		}),
		gatherer: gatherer,
	}

	reg.MustRegister(
		m.ReservationsCreated,
		m.ReservationsRefused,
		m.ConflictsDetected,
		m.Transitions,
		m.AvailabilityChecks,
		m.CommitDuration,
		m.ConcurrencyConflicts,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordCreated records a committed reservation.
func (m *Metrics) RecordCreated(reactivated bool) {
	if m == nil {
		return
	}
	origin := "new"
	if reactivated {
		origin = "reactivated"
	}
	m.ReservationsCreated.WithLabelValues(origin).Inc()
}

// RecordRefused records a create or update refused with an error of the given kind.
func (m *Metrics) RecordRefused(operation, kind string) {
	if m == nil {
		return
	}
	m.ReservationsRefused.WithLabelValues(operation, kind).Inc()
	if kind == "concurrency" {
		m.ConcurrencyConflicts.Inc()
	}
}

// RecordConflict records one conflict record of the given source kind.
func (m *Metrics) RecordConflict(kind string) {
	if m == nil {
		return
	}
	m.ConflictsDetected.WithLabelValues(kind).Inc()
}

// RecordTransition records an applied status change.
func (m *Metrics) RecordTransition(from, to string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(from, to).Inc()
}

// RecordAvailabilityCheck records a served availability preview.
func (m *Metrics) RecordAvailabilityCheck() {
	if m == nil {
		return
	}
	m.AvailabilityChecks.Inc()
}

// ObserveCommit records how long a commit held the room lock.
func (m *Metrics) ObserveCommit(d time.Duration) {
	if m == nil {
		return
	}
	m.CommitDuration.Observe(d.Seconds())
}
