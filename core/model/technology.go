package model

import (
	"fmt"
	"math"
)

// TechKind separates generating technologies from storage.
type TechKind int

const (
	Generator TechKind = iota
	Storage
)

// String returns the configuration name of the kind.
func (k TechKind) String() string {
	if k == Storage {
		return "storage"
	}
	return "generator"
}

// ParseTechKind converts a configuration string into a TechKind.
func ParseTechKind(s string) (TechKind, error) {
	switch s {
	case "", "generator":
		return Generator, nil
	case "storage":
		return Storage, nil
	default:
		return Generator, fmt.Errorf("unknown technology kind %q", s)
	}
}

// Technology holds the cost and emission attributes of one technology.
type Technology struct {
	Name         string
	Kind         TechKind
	Weather      bool    // availability follows a weather capacity factor
	Profile      string  // time-series column with the availability, empty means 1.0
	CapacityCost float64 // annualized, currency/MW-year
	VariableCost float64 // currency/MWh, applied to charge for storage
	FuelCost     float64 // currency/MWh
	Emissions    float64 // t/MWh

	// Storage only.
	Efficiency    float64 // charge efficiency in (0,1]
	DurationHours float64 // energy/power ratio
}

// IsStorage reports whether t is a storage technology.
func (t Technology) IsStorage() bool { return t.Kind == Storage }

// Validate checks the technology attributes.
func (t Technology) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("technology name is required")
	}
	for name, v := range map[string]float64{
		"capacity_cost": t.CapacityCost,
		"variable_cost": t.VariableCost,
		"fuel_cost":     t.FuelCost,
		"emissions":     t.Emissions,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("technology %s: %s is not finite", t.Name, name)
		}
	}
	if t.IsStorage() {
		if t.DurationHours <= 0 {
			return fmt.Errorf("technology %s: storage duration must be positive", t.Name)
		}
		if t.Efficiency <= 0 || t.Efficiency > 1 {
			return fmt.Errorf("technology %s: efficiency must be in (0,1]", t.Name)
		}
	}
	return nil
}

// Bounds restricts an installed capacity. Nil means unbounded on that side.
type Bounds struct {
	Min *float64
	Max *float64
}

// Fixed returns bounds pinning a capacity to v.
func Fixed(v float64) Bounds { return Bounds{Min: &v, Max: &v} }

// AtMost returns bounds capping a capacity at v.
func AtMost(v float64) Bounds { return Bounds{Max: &v} }

// Range converts the bounds into lower/upper values, starting from a lower
// bound of zero.
func (b Bounds) Range() (float64, float64) {
	lo, hi := 0.0, math.Inf(1)
	if b.Min != nil {
		lo = *b.Min
	}
	if b.Max != nil {
		hi = *b.Max
	}
	return lo, hi
}

// Validate rejects negative or crossed bounds.
func (b Bounds) Validate() error {
	lo, hi := b.Range()
	if lo < 0 || math.IsNaN(lo) || math.IsNaN(hi) {
		return fmt.Errorf("capacity bounds must be non-negative")
	}
	if lo > hi {
		return fmt.Errorf("capacity lower bound %v exceeds upper bound %v", lo, hi)
	}
	return nil
}

// Intersect narrows b with o.
func (b Bounds) Intersect(o Bounds) Bounds {
	out := b
	if o.Min != nil && (out.Min == nil || *o.Min > *out.Min) {
		v := *o.Min
		out.Min = &v
	}
	if o.Max != nil && (out.Max == nil || *o.Max < *out.Max) {
		v := *o.Max
		out.Max = &v
	}
	return out
}
