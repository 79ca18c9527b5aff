package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kilianp07/esom/core/scenario"
)

const sample = `data:
  profiles: "data/time_series.csv"
  forecast: "data/battery_costs.csv"
output:
  dir: "out"
  currency: "EUR"
solver:
  type: "simplex"
  conf:
    timeout: "30s"
logging:
  level: "debug"
metrics:
  sinks:
    - type: "prometheus"
      conf:
        textfile: "out/esom.prom"
system:
  initial_soc_mode: "wrap_around"
  nodes:
    - name: "north"
    - name: "south"
      demand_scale: 0.5
      profile_scale:
        wind: 0.8
  technologies:
    - name: "gas"
      capacity_cost: 50000
      fuel_cost: 60
      emissions_profile: "co2_gas"
    - name: "wind"
      profile: "cf_wind"
      capacity_cost: 120000
    - name: "battery"
      kind: "storage"
      capacity_cost: 30000
      efficiency: 0.9
      duration_hours: 4
  links:
    - name: "ns"
      from: "north"
      to: "south"
      capacity_cost: 30
scenarios:
  - name: "base"
  - name: "grown"
    demand_scale: 1.2
    transmission_max: 500
  - name: "flex"
    objective: "benefit"
    year: 2035
    storage_cost_from_forecast: true
flexibility:
  baseline_curtailment_twh: 40
`

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"profiles", cfg.Data.Profiles, "data/time_series.csv"},
		{"forecast", cfg.Data.Forecast, "data/battery_costs.csv"},
		{"output.dir", cfg.Output.Dir, "out"},
		{"currency", cfg.Output.Currency, "EUR"},
		{"results default", cfg.Output.Results, "results.csv"},
		{"summary default", cfg.Output.Summary, "summary.csv"},
		{"solver", cfg.Solver.Type, "simplex"},
		{"solver timeout", cfg.Solver.Conf["timeout"], "30s"},
		{"logging.level", cfg.Logging.Level, "debug"},
		{"logging.format default", cfg.Logging.Format, "json"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "prometheus", true},
		{"history default", cfg.History.Type, "jsonl"},
		{"history path", cfg.History.Conf["path"], filepath.Join("out", "history.jsonl")},
		{"soc mode", cfg.System.InitialSOCMode, "wrap_around"},
		{"nodes", len(cfg.System.Nodes), 2},
		{"node scale", cfg.System.Nodes[1].DemandScale, 0.5},
		{"profile scale", cfg.System.Nodes[1].ProfileScale["wind"], 0.8},
		{"battery kind", cfg.System.Technologies[2].Kind, "storage"},
		{"link", cfg.System.Links[0].CapacityCost, 30.0},
		{"scenarios", len(cfg.Scenarios), 3},
		{"demand scale", cfg.Scenarios[1].DemandScale, 1.2},
		{"transmission max", cfg.Scenarios[1].TransmissionMax != nil && *cfg.Scenarios[1].TransmissionMax == 500, true},
		{"forecast flag", cfg.Scenarios[2].StorageCostFromForecast, true},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("K_OUTPUT__CURRENCY", "GBP")
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Output.Currency != "GBP" {
		t.Fatalf("expected env override, got %s", cfg.Output.Currency)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load("config.toml"); err == nil {
		t.Fatal("expected unsupported format error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
	cases := map[string]string{
		"no nodes":      "system:\n  technologies:\n    - name: gas\n",
		"bad kind":      "system:\n  nodes: [{name: a}]\n  technologies:\n    - name: gas\n      kind: nuclear\n",
		"bad link":      "system:\n  nodes: [{name: a}]\n  technologies: [{name: gas}]\n  links: [{name: l, from: a, to: b}]\n",
		"bad level":     "logging:\n  level: loud\nsystem:\n  nodes: [{name: a}]\n  technologies: [{name: gas}]\n",
		"bad format":    "output:\n  format: xml\nsystem:\n  nodes: [{name: a}]\n  technologies: [{name: gas}]\n",
		"dup scenario":  "system:\n  nodes: [{name: a}]\n  technologies: [{name: gas}]\nscenarios: [{name: x}, {name: x}]\n",
		"bad soc mode":  "system:\n  initial_soc_mode: never\n  nodes: [{name: a}]\n  technologies: [{name: gas}]\n",
		"unknown scale": "system:\n  nodes: [{name: a, profile_scale: {coal: 1}}]\n  technologies: [{name: gas}]\n",
	}
	for name, data := range cases {
		if _, err := Load(writeConfig(t, data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestScenarioParams(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	params := cfg.ScenarioParams(cfg.Scenarios)
	if params[0].Flexibility != nil {
		t.Fatal("cost scenarios must not get flexibility settings")
	}
	f := params[2].Flexibility
	if f == nil || f.BaselineCurtailmentTWh != 40 {
		t.Fatalf("benefit scenario should inherit flexibility settings, got %+v", f)
	}
	f.BaselineCurtailmentTWh = 1
	if cfg.Flexibility.BaselineCurtailmentTWh != 40 {
		t.Fatal("shared settings modified through a scenario")
	}

	own := []scenario.Params{{Name: "own", Objective: "benefit", Flexibility: &scenario.FlexibilityParams{CurtailmentValue: 5}}}
	if got := cfg.ScenarioParams(own); got[0].Flexibility.CurtailmentValue != 5 {
		t.Fatal("scenario settings must win over shared ones")
	}
}

func TestOutputDefaults(t *testing.T) {
	c := OutputConfig{Format: "json"}
	c.SetDefaults()
	if c.Summary != "summary.json" || !strings.HasPrefix(c.Dir, "results") {
		t.Fatalf("unexpected defaults %+v", c)
	}
}
