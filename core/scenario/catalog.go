package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is a scenario file. System, when set, replaces the reference
// system of the configuration.
type Catalog struct {
	System    *System  `yaml:"system,omitempty"`
	Scenarios []Params `yaml:"scenarios"`
}

// LoadCatalog reads a YAML scenario file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and validates a YAML scenario catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate requires unique, non-empty scenario names.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Scenarios))
	for i, p := range c.Scenarios {
		if p.Name == "" {
			return fmt.Errorf("scenario %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate scenario %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Select keeps the named scenarios in catalog order. No names keeps all.
func Select(params []Params, names []string) ([]Params, error) {
	if len(names) == 0 {
		return params, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Params
	for _, p := range params {
		if want[p.Name] {
			out = append(out, p)
			delete(want, p.Name)
		}
	}
	for _, n := range names {
		if want[n] {
			return nil, fmt.Errorf("unknown scenario %q", n)
		}
	}
	return out, nil
}
