package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/esom/config"
	"github.com/kilianp07/esom/core/factory"
	"github.com/kilianp07/esom/core/history"
	"github.com/kilianp07/esom/core/metrics"
	"github.com/kilianp07/esom/core/scenario"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	profiles := filepath.Join(dir, "time_series.csv")
	var b strings.Builder
	b.WriteString("hour,demand,cf_wind\n")
	for h := 0; h < 6; h++ {
		fmt.Fprintf(&b, "%d,100,0.5\n", h)
	}
	require.NoError(t, os.WriteFile(profiles, []byte(b.String()), 0o644))
	forecast := filepath.Join(dir, "costs.csv")
	require.NoError(t, os.WriteFile(forecast, []byte("Year,Predicted_Cost_USD_per_kWh\n2030,80\n2035,64\n"), 0o644))

	cfg := &config.Config{
		Data:   config.DataConfig{Profiles: profiles, Forecast: forecast},
		Output: config.OutputConfig{Dir: filepath.Join(dir, "out")},
		Metrics: metrics.Config{Sinks: []factory.ModuleConfig{
			{Type: "prometheus", Conf: map[string]any{"textfile": filepath.Join(dir, "out", "esom.prom")}},
			{Type: "influx", Conf: map[string]any{"path": filepath.Join(dir, "out", "results.lp")}},
		}},
		System: scenario.System{
			Nodes: []scenario.NodeSpec{{Name: "de"}},
			Technologies: []scenario.TechnologySpec{
				{Name: "gas", CapacityCost: 10, FuelCost: 5, Emissions: 0.5},
				{Name: "wind", Profile: "cf_wind", CapacityCost: 1},
			},
		},
		Scenarios: []scenario.Params{
			{Name: "base"},
			{Name: "no-gas", Disable: []string{"gas", "wind"}},
			{Name: "flex", Objective: "benefit", Year: 2035, StorageCostFromForecast: true},
		},
		Flexibility: &scenario.FlexibilityParams{BaselineCurtailmentTWh: 50},
	}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestService_Run(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(cfg, "")
	require.NoError(t, err)
	defer func() { assert.NoError(t, svc.Close()) }()

	res, err := svc.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, scenario.StatusOptimal, res[0].Status)
	assert.Equal(t, scenario.StatusInfeasible, res[1].Status)
	assert.Equal(t, scenario.StatusOptimal, res[2].Status, res[2].Message)
	assert.InDelta(t, 512.4, res[2].Objective, 1e-6)

	f, err := os.Open(filepath.Join(cfg.Output.Dir, "results.csv"))
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"Scenario", "Type", "Technology", "Node", "Hour", "Value"}, recs[0])
	assert.Equal(t, len(res[0].Rows)+len(res[2].Rows)+1, len(recs))

	summary, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "summary.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "no-gas,Infeasible")

	for _, name := range []string{"esom.prom", "results.lp"} {
		_, err := os.Stat(filepath.Join(cfg.Output.Dir, name))
		assert.NoError(t, err, name)
	}

	recsH, err := svc.Store.Query(context.Background(), history.Query{Status: "Infeasible"})
	require.NoError(t, err)
	require.Len(t, recsH, 1)
	assert.Equal(t, "no-gas", recsH[0].Scenario)
}

func TestService_RunOnly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Format = "json"
	cfg.Output.Summary = "summary.json"
	svc, err := New(cfg, "")
	require.NoError(t, err)
	defer svc.Close()

	res, err := svc.Run(context.Background(), []string{"base"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	_, err = os.Stat(filepath.Join(cfg.Output.Dir, "summary.json"))
	assert.NoError(t, err)

	_, err = svc.Run(context.Background(), []string{"missing"})
	assert.Error(t, err)
}

func TestService_Catalog(t *testing.T) {
	cfg := testConfig(t)
	catalog := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(catalog, []byte("scenarios:\n  - name: only-one\n    demand_scale: 2\n"), 0o644))
	svc, err := New(cfg, catalog)
	require.NoError(t, err)
	defer svc.Close()
	require.Len(t, svc.Params, 1)
	assert.Equal(t, "only-one", svc.Params[0].Name)
}

func TestNew_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.Profiles = filepath.Join(t.TempDir(), "missing.csv")
	_, err := New(cfg, "")
	assert.Error(t, err)

	cfg = testConfig(t)
	cfg.Solver.Type = "cplex"
	_, err = New(cfg, "")
	assert.Error(t, err)
}
