package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/esom/core/factory"
	"github.com/kilianp07/esom/core/scenario"
)

// Expected is the outcome checked for one scenario of a case.
type Expected struct {
	Scenario  string             `yaml:"scenario"`
	Status    string             `yaml:"status"`
	Objective *float64           `yaml:"objective,omitempty"`
	Tolerance float64            `yaml:"tolerance,omitempty"`
	Capacity  map[string]float64 `yaml:"capacity,omitempty"` // MW per technology, summed over nodes
}

// Case is a self-contained regression case: a small system with inline
// profiles, the scenarios to run and their expected outcomes.
type Case struct {
	Name        string               `yaml:"name"`
	Description string               `yaml:"description,omitempty"`
	System      scenario.System      `yaml:"system"`
	Profiles    map[string][]float64 `yaml:"profiles"`
	// Repeat tiles every profile, so a daily pattern can drive a multi-day
	// or year-long horizon.
	Repeat    int               `yaml:"repeat,omitempty"`
	Forecast  map[int]float64   `yaml:"forecast,omitempty"`
	Scenarios []scenario.Params `yaml:"scenarios"`
	Expected  []Expected        `yaml:"expected"`
	// Solver defaults to the dense simplex.
	Solver factory.ModuleConfig `yaml:"solver,omitempty"`
}

func Load(path string) (*Case, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Case
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Reference builds the run input of the case.
func (c *Case) Reference() scenario.Reference {
	profiles := c.Profiles
	if c.Repeat > 1 {
		profiles = make(map[string][]float64, len(c.Profiles))
		for name, series := range c.Profiles {
			tiled := make([]float64, 0, len(series)*c.Repeat)
			for i := 0; i < c.Repeat; i++ {
				tiled = append(tiled, series...)
			}
			profiles[name] = tiled
		}
	}
	return scenario.Reference{
		System:   c.System,
		Profiles: profiles,
		Forecast: scenario.CostForecast(c.Forecast),
	}
}

func tolerance(e Expected) float64 {
	if e.Tolerance > 0 {
		return e.Tolerance
	}
	return 1e-6
}
