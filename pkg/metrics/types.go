package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every metric the engine records.
type Registry struct {
	// Connection metrics
	ConnectionsTotal    *prometheus.CounterVec
	DisconnectionsTotal *prometheus.CounterVec

	// Validation metrics
	ValidationRunsTotal   prometheus.Counter
	ValidationPrunedTotal *prometheus.CounterVec

	// Auto-configure metrics
	AutoConfigureRunsTotal  prometheus.Counter
	AutoConfigureLinksTotal *prometheus.CounterVec
	AutoConfigureRounds     prometheus.Histogram
	AutoConfigureDuration   prometheus.Histogram

	// Session metrics
	SessionConflictsTotal prometheus.Counter
	NetworksLive          *prometheus.GaugeVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialised.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.initConnectionMetrics()
	r.initValidationMetrics()
	r.initAutoConfigureMetrics()
	r.initSessionMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
