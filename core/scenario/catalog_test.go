package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
scenarios:
  - name: 2035_Hybrid_8h
    year: 2035
    base_year: 2024
    demand_growth: 0.02
    electrification: 1.2
    storage_duration: 8
    storage_cost_from_forecast: true
    renewable:
      share: 0.85
      mix: {wind: 0.6, solar: 0.2, offshore: 0.2}
    capacity:
      - technology: gas
        node: north
        max: 100
  - name: flex
    objective: benefit
    storage_cost_per_kwh: 64
    flexibility:
      baseline_curtailment_twh: 12.5
      demand_options:
        - name: industrial
          max_gw: 12
          cost_per_mw_year: 50000
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(catalogYAML))
	require.NoError(t, err)
	require.Len(t, c.Scenarios, 2)
	assert.Nil(t, c.System)

	p := c.Scenarios[0]
	assert.Equal(t, "2035_Hybrid_8h", p.Name)
	assert.Equal(t, 2035, p.Year)
	assert.True(t, p.StorageCostFromForecast)
	require.NotNil(t, p.Renewable)
	assert.InDelta(t, 0.85, p.Renewable.Share, 1e-12)
	assert.Len(t, p.Renewable.Mix, 3)
	require.Len(t, p.Capacity, 1)
	require.NotNil(t, p.Capacity[0].Max)
	assert.Nil(t, p.Capacity[0].Min)
	assert.Equal(t, 100.0, *p.Capacity[0].Max)

	f := c.Scenarios[1]
	assert.Equal(t, "benefit", f.Objective)
	require.NotNil(t, f.StorageCostPerKWh)
	require.NotNil(t, f.Flexibility)
	assert.Equal(t, 12.5, f.Flexibility.BaselineCurtailmentTWh)
	assert.Len(t, f.Flexibility.DemandOptions, 1)
}

func TestParseCatalog_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"syntax":    ":",
		"no name":   "scenarios:\n  - year: 2030\n",
		"duplicate": "scenarios:\n  - name: a\n  - name: a\n",
	} {
		_, err := ParseCatalog([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestLoadCatalog(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))
	c, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, c.Scenarios, 2)
}

func TestSelect(t *testing.T) {
	params := []Params{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	all, err := Select(params, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	got, err := Select(params, []string{"c", "a"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "c", got[1].Name)

	_, err = Select(params, []string{"z"})
	assert.Error(t, err)
}
