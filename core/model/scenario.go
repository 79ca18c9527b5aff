package model

import "fmt"

// InitialSOCMode selects how storage state of charge is initialised.
type InitialSOCMode int

const (
	// SOCFixed starts every storage at Scenario.InitialSOC before step 0.
	SOCFixed InitialSOCMode = iota
	// SOCWrapAround links step 0 to the state at the last step.
	SOCWrapAround
)

// String returns the configuration name of the mode.
func (m InitialSOCMode) String() string {
	if m == SOCWrapAround {
		return "wrap_around"
	}
	return "fixed"
}

// ParseInitialSOCMode converts "fixed" or "wrap_around".
func ParseInitialSOCMode(s string) (InitialSOCMode, error) {
	switch s {
	case "", "fixed":
		return SOCFixed, nil
	case "wrap_around", "wrap":
		return SOCWrapAround, nil
	default:
		return SOCFixed, fmt.Errorf("unknown initial_soc_mode %q", s)
	}
}

// ObjectiveKind selects the model family built for a scenario.
type ObjectiveKind int

const (
	// MinimizeCost minimizes annualized capacity plus operating cost.
	MinimizeCost ObjectiveKind = iota
	// MaximizeBenefit maximizes avoided curtailment value minus
	// annualized flexibility cost.
	MaximizeBenefit
)

// String returns the configuration name of the objective.
func (k ObjectiveKind) String() string {
	if k == MaximizeBenefit {
		return "benefit"
	}
	return "cost"
}

// ParseObjectiveKind converts "cost" or "benefit".
func ParseObjectiveKind(s string) (ObjectiveKind, error) {
	switch s {
	case "", "cost":
		return MinimizeCost, nil
	case "benefit":
		return MaximizeBenefit, nil
	default:
		return MinimizeCost, fmt.Errorf("unknown objective %q", s)
	}
}

// Node is a balancing area with its own series.
type Node struct {
	Name   string
	Demand []float64 // MW per step
	// Availability holds one series per generator technology, keyed by
	// technology name. Values are fractions of installed capacity.
	Availability map[string][]float64
}

// Link is a transmission corridor. Positive flow goes From -> To.
type Link struct {
	Name         string
	From         string
	To           string
	CapacityCost float64 // currency/MW-year
	Bounds       Bounds
}

// CapacityBound overrides the capacity range of a technology. An empty Node
// applies the bound at every node.
type CapacityBound struct {
	Technology string
	Node       string
	Bounds     Bounds
}

// Scenario is the complete, immutable input of one model build.
type Scenario struct {
	Name           string
	Objective      ObjectiveKind
	Horizon        int
	Technologies   []Technology
	Nodes          []Node
	Links          []Link
	Bounds         []CapacityBound
	InitialSOCMode InitialSOCMode
	InitialSOC     float64 // MWh, fixed mode only

	// Flexibility is required when Objective is MaximizeBenefit.
	Flexibility *Flexibility
}

// Technology returns the technology with the given name.
func (s *Scenario) Technology(name string) (Technology, bool) {
	for _, t := range s.Technologies {
		if t.Name == name {
			return t, true
		}
	}
	return Technology{}, false
}

// CapacityRange returns the merged capacity bounds of tech at node.
func (s *Scenario) CapacityRange(tech, node string) Bounds {
	var b Bounds
	for _, cb := range s.Bounds {
		if cb.Technology != tech || (cb.Node != "" && cb.Node != node) {
			continue
		}
		b = b.Intersect(cb.Bounds)
	}
	return b
}

// Flexibility describes the benefit model of storage and demand-side
// flexibility used to reduce renewable curtailment.
type Flexibility struct {
	BaselineCurtailmentTWh float64 // curtailment without flexibility
	CurtailmentValue       float64 // currency/MWh of avoided curtailment
	MaxTotalEffect         float64 // cap on the combined reduction share

	Storage StorageFlexibility
	Demand  DemandFlexibility
}

// StorageFlexibility is the battery part of the benefit model. Its effect is
// min(MaxEffect, gw/SaturationGW) * min(1, DurationHours/ReferenceHours).
type StorageFlexibility struct {
	MinGW           float64
	MaxGW           float64
	DurationHours   float64
	CostPerKWh      float64 // capital cost, currency/kWh
	CapitalRecovery float64 // annualization factor
	SaturationGW    float64
	ReferenceHours  float64
	MaxEffect       float64
}

// DemandFlexibility is the demand-side part of the benefit model. Its effect
// is min(MaxEffect, EffectPerGW * sum(gw)).
type DemandFlexibility struct {
	MaxEffect   float64
	EffectPerGW float64
	Options     []DemandOption
}

// DemandOption is one demand-side resource.
type DemandOption struct {
	Name          string
	MinGW         float64
	MaxGW         float64
	CostPerMWYear float64
}
