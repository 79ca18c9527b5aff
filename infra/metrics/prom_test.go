package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	coremetrics "github.com/kilianp07/esom/core/metrics"
)

func TestPromSink_RecordScenario(t *testing.T) {
	reg := prometheus.NewRegistry()
	path := filepath.Join(t.TempDir(), "esom.prom")
	sink, err := NewPromSinkWithRegistry(path, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	ok := coremetrics.ScenarioEvent{
		Scenario: "base", Status: "Optimal", Objective: 13000, Emissions: 12,
		Variables: 49, Constraints: 48, Duration: time.Second,
		Capacity: map[string]float64{"gas": 100},
	}
	failed := coremetrics.ScenarioEvent{Scenario: "broken", Status: "Infeasible", Objective: 99}
	for _, ev := range []coremetrics.ScenarioEvent{ok, failed} {
		if err := sink.RecordScenario(ev); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	if v := testutil.ToFloat64(sink.scenarios.WithLabelValues("Optimal")); v != 1 {
		t.Fatalf("expected 1 optimal got %v", v)
	}
	if v := testutil.ToFloat64(sink.scenarios.WithLabelValues("Infeasible")); v != 1 {
		t.Fatalf("expected 1 infeasible got %v", v)
	}
	if v := testutil.ToFloat64(sink.objective.WithLabelValues("base")); v != 13000 {
		t.Fatalf("expected objective 13000 got %v", v)
	}
	if v := testutil.ToFloat64(sink.capacity.WithLabelValues("base", "gas")); v != 100 {
		t.Fatalf("expected capacity 100 got %v", v)
	}
	if n := testutil.CollectAndCount(sink.objective); n != 1 {
		t.Fatalf("failed scenarios should not set the objective, got %d series", n)
	}

	if err := sink.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), `esom_scenarios_total{status="Optimal"} 1`) {
		t.Fatalf("textfile missing counter:\n%s", data)
	}
}

// Registering twice on one registry reuses the collectors.
func TestPromSink_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	a, err := NewPromSinkWithRegistry("", reg)
	if err != nil {
		t.Fatalf("first sink: %v", err)
	}
	b, err := NewPromSinkWithRegistry("", reg)
	if err != nil {
		t.Fatalf("second sink: %v", err)
	}
	if err := a.RecordScenario(coremetrics.ScenarioEvent{Status: "Optimal"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if v := testutil.ToFloat64(b.scenarios.WithLabelValues("Optimal")); v != 1 {
		t.Fatalf("expected shared counter, got %v", v)
	}
	if err := b.Flush(); err != nil {
		t.Fatalf("flush without path: %v", err)
	}
}
