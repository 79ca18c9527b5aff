package history

import "github.com/kilianp07/esom/core/factory"

var registry = factory.NewRegistry[Store]()

// Register adds a store factory identified by name.
func Register(name string, f factory.Factory[Store]) error {
	return registry.Register(name, f)
}

// New creates the store described by cfg. An empty type disables history.
func New(cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" {
		return NopStore{}, nil
	}
	return registry.Create(cfg)
}

type fileConfig struct {
	Path       string `json:"path"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func init() {
	_ = Register("nop", func(map[string]any) (Store, error) { return NopStore{}, nil })
	_ = Register("jsonl", func(conf map[string]any) (Store, error) {
		var c fileConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "results/history.jsonl"
		}
		return NewJSONLStore(c.Path)
	})
	_ = Register("rotating", func(conf map[string]any) (Store, error) {
		c := fileConfig{MaxSizeMB: 10, MaxBackups: 5, MaxAgeDays: 30}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "results/history.jsonl"
		}
		return NewRotatingStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
}
