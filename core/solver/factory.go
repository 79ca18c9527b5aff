package solver

import (
	"fmt"
	"time"

	"github.com/kilianp07/esom/core/factory"
)

var registry = factory.NewRegistry[Solver]()

// Register adds a solver factory identified by name.
func Register(name string, f factory.Factory[Solver]) error {
	return registry.Register(name, f)
}

// New creates the solver described by cfg. An empty type selects the
// simplex adapter with default settings.
func New(cfg factory.ModuleConfig) (Solver, error) {
	if cfg.Type == "" {
		return NewSimplex(), nil
	}
	return registry.Create(cfg)
}

// SimplexConfig holds the tunables of the "simplex" solver.
type SimplexConfig struct {
	Tolerance float64 `json:"tolerance"`
	Timeout   string  `json:"timeout"`
	MaxCells  int     `json:"max_cells"`
}

// HiGHSConfig holds the tunables of the "highs" solver.
type HiGHSConfig struct {
	Path    string `json:"path"`
	Method  string `json:"method"`
	Timeout string `json:"timeout"`
	TempDir string `json:"temp_dir"`
}

func parseTimeout(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative timeout %s", s)
	}
	return d, nil
}

func init() {
	_ = Register("simplex", func(conf map[string]any) (Solver, error) {
		var c SimplexConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		s := NewSimplex()
		if c.Tolerance > 0 {
			s.Tolerance = c.Tolerance
		}
		if c.MaxCells > 0 {
			s.MaxCells = c.MaxCells
		}
		d, err := parseTimeout(c.Timeout)
		if err != nil {
			return nil, err
		}
		s.Timeout = d
		return s, nil
	})
	_ = Register("highs", func(conf map[string]any) (Solver, error) {
		var c HiGHSConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		h := NewHiGHS()
		if c.Path != "" {
			h.Path = c.Path
		}
		switch c.Method {
		case "", "choose", "simplex", "ipm", "pdlp":
			h.Method = c.Method
		default:
			return nil, fmt.Errorf("highs: unknown method %q", c.Method)
		}
		d, err := parseTimeout(c.Timeout)
		if err != nil {
			return nil, err
		}
		h.Timeout = d
		h.TempDir = c.TempDir
		return h, nil
	})
}
