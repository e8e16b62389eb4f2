package metrics

import (
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if r.ConnectionsTotal == nil {
		t.Error("ConnectionsTotal not initialized")
	}
	if r.ValidationRunsTotal == nil {
		t.Error("ValidationRunsTotal not initialized")
	}
	if r.AutoConfigureRounds == nil {
		t.Error("AutoConfigureRounds not initialized")
	}
	if r.NetworksLive == nil {
		t.Error("NetworksLive not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r1 := DefaultRegistry()
	r2 := DefaultRegistry()

	if r1 != r2 {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordConnection(t *testing.T) {
	r := NewRegistry()

	r.RecordConnection("c3", "created")
	r.RecordConnection("c3", "created")
	r.RecordConnection("nova", "rejected")

	counter, err := r.ConnectionsTotal.GetMetricWithLabelValues("c3", "created")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}

	var metric dto.Metric
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Created counter = %v, want 2", metric.Counter.GetValue())
	}

	rejected, err := r.ConnectionsTotal.GetMetricWithLabelValues("nova", "rejected")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := rejected.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Rejected counter = %v, want 1", metric.Counter.GetValue())
	}
}

func TestRecordValidation(t *testing.T) {
	r := NewRegistry()

	r.RecordValidation(map[string]int{"missing_unit": 2, "cycle": 0})
	r.RecordValidation(nil)

	var metric dto.Metric
	if err := r.ValidationRunsTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Validation runs = %v, want 2", metric.Counter.GetValue())
	}

	pruned, err := r.ValidationPrunedTotal.GetMetricWithLabelValues("missing_unit")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := pruned.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 2 {
		t.Errorf("Pruned counter = %v, want 2", metric.Counter.GetValue())
	}

	// Zero counts are not recorded.
	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() != "c3_validation_pruned_total" {
			continue
		}
		if len(f.GetMetric()) != 1 {
			t.Errorf("pruned series = %d, want 1", len(f.GetMetric()))
		}
	}
}

func TestRecordAutoConfigure(t *testing.T) {
	r := NewRegistry()

	r.RecordAutoConfigure(map[string]int{"peers": 3, "slaves": 5}, 2, 20*time.Millisecond)

	var metric dto.Metric
	if err := r.AutoConfigureRunsTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Runs = %v, want 1", metric.Counter.GetValue())
	}

	slaves, err := r.AutoConfigureLinksTotal.GetMetricWithLabelValues("slaves")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := slaves.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 5 {
		t.Errorf("Slave links = %v, want 5", metric.Counter.GetValue())
	}

	if err := r.AutoConfigureRounds.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 1 || metric.Histogram.GetSampleSum() != 2 {
		t.Errorf("Rounds histogram = %d samples, sum %v", metric.Histogram.GetSampleCount(), metric.Histogram.GetSampleSum())
	}
}

func TestSessionMetrics(t *testing.T) {
	r := NewRegistry()

	r.RecordSessionConflict()
	r.SetLiveNetworks(map[string]int{"c3": 2, "nova": 1})
	r.SetLiveNetworks(map[string]int{"c3": 1})

	var metric dto.Metric
	if err := r.SessionConflictsTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Counter.GetValue() != 1 {
		t.Errorf("Conflicts = %v, want 1", metric.Counter.GetValue())
	}

	gauge, err := r.NetworksLive.GetMetricWithLabelValues("c3")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := gauge.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Gauge.GetValue() != 1 {
		t.Errorf("Live c3 networks = %v, want 1", metric.Gauge.GetValue())
	}

	// Types missing from the latest update are dropped, not left stale.
	families, err := r.GetPrometheusRegistry().Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, f := range families {
		if f.GetName() != "c3_networks_live" {
			continue
		}
		for _, m := range f.GetMetric() {
			for _, l := range m.GetLabel() {
				if strings.EqualFold(l.GetValue(), "nova") {
					t.Error("stale nova gauge still exported")
				}
			}
		}
	}
}

func TestNilRegistry(t *testing.T) {
	var r *Registry

	// None of these may panic.
	r.RecordConnection("c3", "created")
	r.RecordDisconnection("cancel_pin")
	r.RecordValidation(map[string]int{"cycle": 1})
	r.RecordAutoConfigure(nil, 1, time.Millisecond)
	r.RecordSessionConflict()
	r.SetLiveNetworks(map[string]int{"c3": 1})
}
