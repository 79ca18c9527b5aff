package dispatch

import (
	"math"

	"github.com/kilianp07/esom/core/model"
)

// Validate checks that every combination referenced by the model has data.
// It returns a *model.SpecificationError describing the first problem found.
func Validate(sc *model.Scenario) error {
	if sc == nil {
		return model.Specf("", "scenario is nil")
	}
	if sc.Objective == model.MaximizeBenefit {
		return validateFlexibility(sc)
	}
	if sc.Horizon < 1 {
		return model.Specf(sc.Name, "horizon must be at least 1, got %d", sc.Horizon)
	}
	if len(sc.Nodes) == 0 {
		return model.Specf(sc.Name, "no nodes defined")
	}
	if len(sc.Technologies) == 0 {
		return model.Specf(sc.Name, "no technologies defined")
	}
	if sc.InitialSOC < 0 {
		return model.Specf(sc.Name, "initial state of charge must be non-negative")
	}

	techs := make(map[string]bool, len(sc.Technologies))
	for _, t := range sc.Technologies {
		if techs[t.Name] {
			return model.Specf(sc.Name, "duplicate technology %q", t.Name)
		}
		if !ValidName(t.Name) {
			return invalidName(sc, "technology", t.Name)
		}
		if err := t.Validate(); err != nil {
			return model.Specf(sc.Name, "%v", err)
		}
		techs[t.Name] = true
	}

	nodes := make(map[string]bool, len(sc.Nodes))
	for _, n := range sc.Nodes {
		if n.Name == "" {
			return model.Specf(sc.Name, "node name is required")
		}
		if nodes[n.Name] {
			return model.Specf(sc.Name, "duplicate node %q", n.Name)
		}
		if !ValidName(n.Name) {
			return invalidName(sc, "node", n.Name)
		}
		nodes[n.Name] = true
		if err := checkSeries(sc, n.Name, "demand", n.Demand); err != nil {
			return err
		}
		for _, t := range sc.Technologies {
			if t.IsStorage() {
				continue
			}
			series, ok := n.Availability[t.Name]
			if !ok {
				return model.Specf(sc.Name, "node %s has no availability series for %s", n.Name, t.Name)
			}
			if err := checkSeries(sc, n.Name, "availability of "+t.Name, series); err != nil {
				return err
			}
		}
		for name := range n.Availability {
			if !techs[name] {
				return model.Specf(sc.Name, "node %s references unknown technology %q", n.Name, name)
			}
		}
	}

	links := make(map[string]bool, len(sc.Links))
	for _, l := range sc.Links {
		if l.Name == "" || links[l.Name] {
			return model.Specf(sc.Name, "link names must be unique and non-empty")
		}
		if !ValidName(l.Name) {
			return invalidName(sc, "link", l.Name)
		}
		links[l.Name] = true
		if !nodes[l.From] || !nodes[l.To] {
			return model.Specf(sc.Name, "link %s references unknown node", l.Name)
		}
		if l.From == l.To {
			return model.Specf(sc.Name, "link %s connects node %s to itself", l.Name, l.From)
		}
		if err := l.Bounds.Validate(); err != nil {
			return model.Specf(sc.Name, "link %s: %v", l.Name, err)
		}
	}

	for _, b := range sc.Bounds {
		if !techs[b.Technology] {
			return model.Specf(sc.Name, "capacity bound references unknown technology %q", b.Technology)
		}
		if b.Node != "" && !nodes[b.Node] {
			return model.Specf(sc.Name, "capacity bound references unknown node %q", b.Node)
		}
	}
	for _, t := range sc.Technologies {
		for _, n := range sc.Nodes {
			if err := sc.CapacityRange(t.Name, n.Name).Validate(); err != nil {
				return model.Specf(sc.Name, "%s at %s: %v", t.Name, n.Name, err)
			}
		}
	}
	return nil
}

func invalidName(sc *model.Scenario, what, name string) error {
	return model.Specf(sc.Name, "%s name %q must start with a letter and contain only letters, digits or dots", what, name)
}

func checkSeries(sc *model.Scenario, node, what string, series []float64) error {
	if len(series) < sc.Horizon {
		return model.Specf(sc.Name, "node %s: %s has %d steps, horizon is %d", node, what, len(series), sc.Horizon)
	}
	for h := 0; h < sc.Horizon; h++ {
		v := series[h]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return model.Specf(sc.Name, "node %s: %s at step %d is %v", node, what, h, v)
		}
	}
	return nil
}

func validateFlexibility(sc *model.Scenario) error {
	f := sc.Flexibility
	if f == nil {
		return model.Specf(sc.Name, "benefit objective requires flexibility settings")
	}
	if f.BaselineCurtailmentTWh < 0 || f.CurtailmentValue < 0 {
		return model.Specf(sc.Name, "baseline curtailment and curtailment value must be non-negative")
	}
	if f.MaxTotalEffect <= 0 || f.MaxTotalEffect > 1 {
		return model.Specf(sc.Name, "max total effect must be in (0,1]")
	}
	st := f.Storage
	if st.MaxGW < 0 || st.CostPerKWh < 0 || st.CapitalRecovery < 0 {
		return model.Specf(sc.Name, "storage flexibility values must be non-negative")
	}
	if st.MinGW < 0 || st.MinGW > st.MaxGW {
		return model.Specf(sc.Name, "storage minimum %g GW outside [0, %g]", st.MinGW, st.MaxGW)
	}
	if st.MaxGW > 0 && (st.DurationHours <= 0 || st.SaturationGW <= 0 || st.ReferenceHours <= 0) {
		return model.Specf(sc.Name, "storage duration, saturation and reference duration must be positive")
	}
	if st.MaxEffect < 0 || st.MaxEffect > 1 {
		return model.Specf(sc.Name, "storage max effect must be in [0,1]")
	}
	d := f.Demand
	if d.MaxEffect < 0 || d.MaxEffect > 1 || d.EffectPerGW < 0 {
		return model.Specf(sc.Name, "demand-side effect parameters out of range")
	}
	seen := make(map[string]bool, len(d.Options))
	for _, o := range d.Options {
		if o.Name == "" || seen[o.Name] {
			return model.Specf(sc.Name, "demand-side option names must be unique and non-empty")
		}
		if !ValidName(o.Name) || o.Name == FlexStorageName {
			return invalidName(sc, "demand-side option", o.Name)
		}
		seen[o.Name] = true
		if o.MaxGW < 0 || o.CostPerMWYear < 0 {
			return model.Specf(sc.Name, "demand-side option %s values must be non-negative", o.Name)
		}
		if o.MinGW < 0 || o.MinGW > o.MaxGW {
			return model.Specf(sc.Name, "demand-side option %s minimum %g GW outside [0, %g]", o.Name, o.MinGW, o.MaxGW)
		}
	}
	return nil
}
