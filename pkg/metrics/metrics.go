package metrics

import "time"

// All recorders accept a nil receiver so callers can leave metrics unset.

// RecordConnection counts a connection attempt.
func (r *Registry) RecordConnection(networkType, outcome string) {
	if r == nil {
		return
	}
	r.ConnectionsTotal.WithLabelValues(networkType, outcome).Inc()
}

// RecordDisconnection counts a removed link.
func (r *Registry) RecordDisconnection(operation string) {
	if r == nil {
		return
	}
	r.DisconnectionsTotal.WithLabelValues(operation).Inc()
}

// RecordValidation counts a validation run and what it pruned.
func (r *Registry) RecordValidation(pruned map[string]int) {
	if r == nil {
		return
	}
	r.ValidationRunsTotal.Inc()
	for kind, n := range pruned {
		if n > 0 {
			r.ValidationPrunedTotal.WithLabelValues(kind).Add(float64(n))
		}
	}
}

// RecordAutoConfigure records one auto-configure run.
func (r *Registry) RecordAutoConfigure(linksByPhase map[string]int, rounds int, duration time.Duration) {
	if r == nil {
		return
	}
	r.AutoConfigureRunsTotal.Inc()
	for phase, n := range linksByPhase {
		r.AutoConfigureLinksTotal.WithLabelValues(phase).Add(float64(n))
	}
	r.AutoConfigureRounds.Observe(float64(rounds))
	r.AutoConfigureDuration.Observe(duration.Seconds())
}

// RecordSessionConflict counts a kept-local conflict.
func (r *Registry) RecordSessionConflict() {
	if r == nil {
		return
	}
	r.SessionConflictsTotal.Inc()
}

// SetLiveNetworks replaces the live network gauge values.
func (r *Registry) SetLiveNetworks(byType map[string]int) {
	if r == nil {
		return
	}
	r.NetworksLive.Reset()
	for t, n := range byType {
		r.NetworksLive.WithLabelValues(t).Set(float64(n))
	}
}
