package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/esom/core/factory"
	"github.com/kilianp07/esom/core/metrics"
	"github.com/kilianp07/esom/core/model"
	"github.com/kilianp07/esom/core/scenario"
	"github.com/kilianp07/esom/infra/logger"
)

type Config struct {
	Data      DataConfig           `json:"data"`
	Output    OutputConfig         `json:"output"`
	Solver    factory.ModuleConfig `json:"solver"`
	Logging   logger.Config        `json:"logging"`
	Metrics   metrics.Config       `json:"metrics"`
	History   factory.ModuleConfig `json:"history"`
	System    scenario.System      `json:"system"`
	Scenarios []scenario.Params    `json:"scenarios"`
	// Flexibility holds the settings of benefit scenarios that have none.
	Flexibility *scenario.FlexibilityParams `json:"flexibility"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Data.SetDefaults()
	c.Output.SetDefaults()
	c.Logging.SetDefaults()
	if c.Solver.Type == "" {
		c.Solver.Type = "simplex"
	}
	if c.History.Type == "" {
		c.History = factory.ModuleConfig{
			Type: "jsonl",
			Conf: map[string]any{"path": filepath.Join(c.Output.Dir, "history.jsonl")},
		}
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Data.Validate(); err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if err := c.Output.Validate(); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := validateLogging(c.Logging); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := validateSystem(c.System); err != nil {
		return fmt.Errorf("system: %w", err)
	}
	cat := scenario.Catalog{Scenarios: c.Scenarios}
	if err := cat.Validate(); err != nil {
		return fmt.Errorf("scenarios: %w", err)
	}
	return nil
}

// ScenarioParams returns the configured scenarios with the shared
// flexibility settings applied to benefit scenarios that have none.
func (c Config) ScenarioParams(params []scenario.Params) []scenario.Params {
	out := make([]scenario.Params, len(params))
	copy(out, params)
	if c.Flexibility == nil {
		return out
	}
	for i := range out {
		if out[i].Objective == model.MaximizeBenefit.String() && out[i].Flexibility == nil {
			f := *c.Flexibility
			out[i].Flexibility = &f
		}
	}
	return out
}

func validateSystem(s scenario.System) error {
	if len(s.Nodes) == 0 {
		return fmt.Errorf("at least one node is required")
	}
	if len(s.Technologies) == 0 {
		return fmt.Errorf("at least one technology is required")
	}
	if _, err := model.ParseInitialSOCMode(s.InitialSOCMode); err != nil {
		return err
	}
	techs := make(map[string]bool, len(s.Technologies))
	for _, t := range s.Technologies {
		if t.Name == "" || techs[t.Name] {
			return fmt.Errorf("technology names must be unique and non-empty")
		}
		techs[t.Name] = true
		if _, err := model.ParseTechKind(t.Kind); err != nil {
			return err
		}
	}
	nodes := make(map[string]bool, len(s.Nodes))
	for _, n := range s.Nodes {
		if n.Name == "" || nodes[n.Name] {
			return fmt.Errorf("node names must be unique and non-empty")
		}
		nodes[n.Name] = true
		for tech := range n.ProfileScale {
			if !techs[tech] {
				return fmt.Errorf("node %s scales unknown technology %q", n.Name, tech)
			}
		}
	}
	for _, l := range s.Links {
		if !nodes[l.From] || !nodes[l.To] {
			return fmt.Errorf("link %s references unknown node", l.Name)
		}
	}
	return nil
}
