package metrics

import (
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/esom/core/metrics"
)

// PromSink records scenario outcomes in Prometheus collectors. Batch runs
// have no scrape endpoint, so Flush writes the registry in the text format
// read by the node exporter textfile collector.
type PromSink struct {
	gatherer  prometheus.Gatherer
	path      string
	scenarios *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	objective *prometheus.GaugeVec
	emissions *prometheus.GaugeVec
	modelSize *prometheus.GaugeVec
	capacity  *prometheus.GaugeVec
}

// NewPromSink registers the collectors on a fresh registry and flushes to
// path.
func NewPromSink(path string) (*PromSink, error) {
	return NewPromSinkWithRegistry(path, prometheus.NewRegistry())
}

// NewPromSinkWithRegistry registers the collectors on reg. Collectors that
// are already registered are reused.
func NewPromSinkWithRegistry(path string, reg *prometheus.Registry) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	s := &PromSink{gatherer: reg, path: path}
	var err error
	if s.scenarios, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "esom_scenarios_total",
		Help: "Scenarios solved, by outcome",
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "esom_solve_duration_seconds",
		Help:    "Wall-clock time of build, solve and extraction per scenario",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"status"})); err != nil {
		return nil, err
	}
	if s.objective, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "esom_scenario_objective",
		Help: "Optimal objective value per scenario",
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.emissions, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "esom_scenario_emissions_tonnes",
		Help: "Post-hoc emissions per scenario",
	}, []string{"scenario"})); err != nil {
		return nil, err
	}
	if s.modelSize, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "esom_model_size",
		Help: "Number of variables and constraints of the scenario model",
	}, []string{"scenario", "kind"})); err != nil {
		return nil, err
	}
	if s.capacity, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "esom_installed_capacity_mw",
		Help: "Optimal installed capacity per technology",
	}, []string{"scenario", "technology"})); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordScenario updates the collectors. Gauges are only set for optimal
// scenarios.
func (s *PromSink) RecordScenario(ev coremetrics.ScenarioEvent) error {
	s.scenarios.WithLabelValues(ev.Status).Inc()
	s.duration.WithLabelValues(ev.Status).Observe(ev.Duration.Seconds())
	s.modelSize.WithLabelValues(ev.Scenario, "variables").Set(float64(ev.Variables))
	s.modelSize.WithLabelValues(ev.Scenario, "constraints").Set(float64(ev.Constraints))
	if ev.Status != "Optimal" {
		return nil
	}
	s.objective.WithLabelValues(ev.Scenario).Set(ev.Objective)
	s.emissions.WithLabelValues(ev.Scenario).Set(ev.Emissions)
	for tech, mw := range ev.Capacity {
		s.capacity.WithLabelValues(ev.Scenario, tech).Set(mw)
	}
	return nil
}

// Flush writes the registry to the textfile. An empty path disables it.
func (s *PromSink) Flush() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(s.path, s.gatherer)
}
