// Package results flattens solved models into ordered result rows and checks
// solutions against the model invariants.
package results

import (
	"errors"
	"fmt"

	"github.com/kilianp07/esom/core/dispatch"
	"github.com/kilianp07/esom/core/model"
	"github.com/kilianp07/esom/core/solver"
)

// Type labels a result row.
type Type string

const (
	Capacity      Type = "Capacity"
	Generation    Type = "Generation"
	Charge        Type = "Charge"
	Discharge     Type = "Discharge"
	StateOfCharge Type = "StateOfCharge"
	Flow          Type = "Flow"
	Cost          Type = "Cost"
	Emissions     Type = "Emissions"
	Effect        Type = "Effect"
)

// None fills the technology or node of rows that have none.
const None = "-"

// NoStep marks rows that are not tied to a time step.
const NoStep = -1

// Transmission is the technology label of link capacity rows.
const Transmission = "transmission"

// Row is one normalized result record. Units: MW for capacities and power,
// MWh for state of charge, t for emissions, scenario currency for cost.
type Row struct {
	Scenario   string
	Type       Type
	Technology string
	Node       string
	Step       int
	Value      float64
}

// ErrNoSolution is returned when extracting from a non-optimal solution.
var ErrNoSolution = errors.New("solution is not optimal")

// Extract returns the rows of a solved scenario. The order only depends on
// the scenario: capacities, then per step the dispatch of every node and the
// link flows, then emissions and the total cost.
func Extract(sc *model.Scenario, sol solver.Solution) ([]Row, error) {
	if sol.Status != solver.StatusOptimal {
		return nil, fmt.Errorf("%s: %w (%s)", sc.Name, ErrNoSolution, sol.Status)
	}
	x := extractor{sc: sc, sol: sol}
	if sc.Objective == model.MaximizeBenefit {
		x.flexibility()
	} else {
		x.cost()
	}
	if x.err != nil {
		return nil, x.err
	}
	return x.rows, nil
}

type extractor struct {
	sc   *model.Scenario
	sol  solver.Solution
	rows []Row
	err  error
}

func (x *extractor) value(name string) float64 {
	v, ok := x.sol.Values[name]
	if !ok && x.err == nil {
		x.err = fmt.Errorf("%s: no value for variable %s", x.sc.Name, name)
	}
	return v
}

func (x *extractor) add(typ Type, tech, node string, step int, v float64) {
	x.rows = append(x.rows, Row{Scenario: x.sc.Name, Type: typ, Technology: tech, Node: node, Step: step, Value: v})
}

func (x *extractor) cost() {
	sc := x.sc
	for _, t := range sc.Technologies {
		for _, n := range sc.Nodes {
			x.add(Capacity, t.Name, n.Name, NoStep, x.value(dispatch.CapacityVar(t.Name, n.Name)))
		}
	}
	for _, l := range sc.Links {
		x.add(Capacity, Transmission, l.Name, NoStep, x.value(dispatch.LinkCapacityVar(l.Name)))
	}

	emissions := make(map[[2]string]float64)
	for h := 0; h < sc.Horizon; h++ {
		for _, n := range sc.Nodes {
			for _, t := range sc.Technologies {
				if t.IsStorage() {
					x.add(Charge, t.Name, n.Name, h, x.value(dispatch.ChargeVar(t.Name, n.Name, h)))
					x.add(Discharge, t.Name, n.Name, h, x.value(dispatch.DischargeVar(t.Name, n.Name, h)))
					x.add(StateOfCharge, t.Name, n.Name, h, x.value(dispatch.SOCVar(t.Name, n.Name, h)))
					continue
				}
				g := x.value(dispatch.GenerationVar(t.Name, n.Name, h))
				x.add(Generation, t.Name, n.Name, h, g)
				emissions[[2]string{t.Name, n.Name}] += t.Emissions * g
			}
		}
		for _, l := range sc.Links {
			x.add(Flow, None, l.Name, h, x.value(dispatch.FlowVar(l.Name, h)))
		}
	}

	var total float64
	for _, t := range sc.Technologies {
		if t.IsStorage() {
			continue
		}
		for _, n := range sc.Nodes {
			e := emissions[[2]string{t.Name, n.Name}]
			x.add(Emissions, t.Name, n.Name, NoStep, e)
			total += e
		}
	}
	x.add(Emissions, None, None, NoStep, total)
	x.add(Cost, None, None, NoStep, x.sol.Objective)
}

func (x *extractor) flexibility() {
	f := x.sc.Flexibility
	x.add(Capacity, dispatch.FlexStorageName, None, NoStep, x.value(dispatch.StorageGWVar))
	for _, o := range f.Demand.Options {
		x.add(Capacity, o.Name, None, NoStep, x.value(dispatch.DemandGWVar(o.Name)))
	}
	se := x.value(dispatch.StorageEffectVar)
	de := x.value(dispatch.DemandEffectVar)
	x.add(Effect, dispatch.FlexStorageName, None, NoStep, se)
	x.add(Effect, "demand", None, NoStep, de)
	x.add(Effect, None, None, NoStep, se+de)
	x.add(Cost, None, None, NoStep, x.sol.Objective)
}

// Total returns the value of the first row matching typ with no technology
// and no node, such as the total cost or total emissions.
func Total(rows []Row, typ Type) (float64, bool) {
	for _, r := range rows {
		if r.Type == typ && r.Technology == None && r.Node == None {
			return r.Value, true
		}
	}
	return 0, false
}
