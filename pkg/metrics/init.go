package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initConnectionMetrics() {
	r.ConnectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "c3_connections_total",
			Help: "Connection attempts by network type and outcome",
		},
		[]string{"network_type", "outcome"},
	)

	r.DisconnectionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "c3_disconnections_total",
			Help: "Links removed by operation",
		},
		[]string{"operation"},
	)
}

func (r *Registry) initValidationMetrics() {
	r.ValidationRunsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "c3_validation_runs_total",
			Help: "Number of network list validation passes",
		},
	)

	r.ValidationPrunedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "c3_validation_pruned_total",
			Help: "Entries removed by validation, by kind",
		},
		[]string{"kind"},
	)
}

func (r *Registry) initAutoConfigureMetrics() {
	r.AutoConfigureRunsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "c3_autoconfigure_runs_total",
			Help: "Number of auto-configure runs",
		},
	)

	r.AutoConfigureLinksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "c3_autoconfigure_links_total",
			Help: "Links created by auto-configure, by phase",
		},
		[]string{"phase"},
	)

	r.AutoConfigureRounds = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "c3_autoconfigure_rounds",
			Help:    "Hierarchy rounds needed to reach a fixed point",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		},
	)

	r.AutoConfigureDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "c3_autoconfigure_duration_seconds",
			Help:    "Auto-configure wall time in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1},
		},
	)
}

func (r *Registry) initSessionMetrics() {
	r.SessionConflictsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "c3_session_conflicts_total",
			Help: "Remote replacements that collided with unsaved local edits",
		},
	)

	r.NetworksLive = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "c3_networks_live",
			Help: "Networks currently held by a session, by type",
		},
		[]string{"network_type"},
	)
}
