// Package dispatch builds the linear programs of a scenario: the
// cost-minimizing dispatch and capacity expansion model, and the
// flexibility-benefit model.
package dispatch

import (
	"math"
	"strconv"

	"github.com/kilianp07/esom/core/lp"
	"github.com/kilianp07/esom/core/model"
)

// Build validates the scenario and translates it into a linear program. It
// has no side effects: building the same scenario twice yields identical
// models.
func Build(sc *model.Scenario) (*lp.Model, error) {
	if err := Validate(sc); err != nil {
		return nil, err
	}
	if sc.Objective == model.MaximizeBenefit {
		return buildFlexibility(sc), nil
	}
	return buildCost(sc), nil
}

// costBuilder keeps the variable handles of one cost-minimization build.
type costBuilder struct {
	sc  *model.Scenario
	m   *lp.Model
	cap map[[2]string]lp.VarID
	obj lp.Expr
}

func buildCost(sc *model.Scenario) *lp.Model {
	b := &costBuilder{
		sc:  sc,
		m:   lp.NewModel(sc.Name, lp.Minimize),
		cap: make(map[[2]string]lp.VarID),
	}
	b.capacities()
	for _, n := range sc.Nodes {
		for _, t := range sc.Technologies {
			if t.IsStorage() {
				b.storage(t, n)
			} else {
				b.generator(t, n)
			}
		}
	}
	b.links()
	b.balance()
	b.m.SetObjective(b.obj, 0)
	return b.m
}

func (b *costBuilder) capacities() {
	for _, t := range b.sc.Technologies {
		for _, n := range b.sc.Nodes {
			lo, hi := b.sc.CapacityRange(t.Name, n.Name).Range()
			id := b.m.AddVariable(CapacityVar(t.Name, n.Name), lo, hi)
			b.cap[[2]string{t.Name, n.Name}] = id
			b.obj = b.obj.Add(id, t.CapacityCost)
		}
	}
}

// generator adds output variables bounded by capacity times availability.
func (b *costBuilder) generator(t model.Technology, n model.Node) {
	capID := b.cap[[2]string{t.Name, n.Name}]
	avail := n.Availability[t.Name]
	for h := 0; h < b.sc.Horizon; h++ {
		gen := b.m.AddVariable(GenerationVar(t.Name, n.Name, h), 0, math.Inf(1))
		b.obj = b.obj.Add(gen, t.VariableCost+t.FuelCost)
		b.m.AddConstraint(stepName("caplim", t.Name, n.Name, h),
			lp.Expr{}.Add(gen, 1).Add(capID, -avail[h]), lp.LessEqual, 0)
	}
}

// storage adds charge, discharge and state-of-charge variables with the
// power, energy and continuity constraints.
func (b *costBuilder) storage(t model.Technology, n model.Node) {
	capID := b.cap[[2]string{t.Name, n.Name}]
	horizon := b.sc.Horizon
	charge := make([]lp.VarID, horizon)
	discharge := make([]lp.VarID, horizon)
	soc := make([]lp.VarID, horizon)
	for h := 0; h < horizon; h++ {
		charge[h] = b.m.AddVariable(ChargeVar(t.Name, n.Name, h), 0, math.Inf(1))
		discharge[h] = b.m.AddVariable(DischargeVar(t.Name, n.Name, h), 0, math.Inf(1))
		soc[h] = b.m.AddVariable(SOCVar(t.Name, n.Name, h), 0, math.Inf(1))
		b.obj = b.obj.Add(charge[h], t.VariableCost+t.FuelCost)
	}
	for h := 0; h < horizon; h++ {
		// soc[h] - soc[h-1] - eff*charge[h] + discharge[h] = 0
		row := lp.Expr{}.Add(soc[h], 1).Add(charge[h], -t.Efficiency).Add(discharge[h], 1)
		rhs := 0.0
		switch {
		case h > 0:
			row = row.Add(soc[h-1], -1)
		case b.sc.InitialSOCMode == model.SOCWrapAround && horizon > 1:
			row = row.Add(soc[horizon-1], -1)
		case b.sc.InitialSOCMode == model.SOCWrapAround:
			// single step: the state wraps onto itself and cancels
			row = lp.Expr{}.Add(charge[h], -t.Efficiency).Add(discharge[h], 1)
		default:
			rhs = b.sc.InitialSOC
		}
		b.m.AddConstraint(stepName("socbal", t.Name, n.Name, h), row, lp.Equal, rhs)
		b.m.AddConstraint(stepName("soclim", t.Name, n.Name, h),
			lp.Expr{}.Add(soc[h], 1).Add(capID, -t.DurationHours), lp.LessEqual, 0)
		b.m.AddConstraint(stepName("power", t.Name, n.Name, h),
			lp.Expr{}.Add(charge[h], 1).Add(discharge[h], 1).Add(capID, -1), lp.LessEqual, 0)
	}
}

func (b *costBuilder) links() {
	for _, l := range b.sc.Links {
		lo, hi := l.Bounds.Range()
		tx := b.m.AddVariable(LinkCapacityVar(l.Name), lo, hi)
		b.obj = b.obj.Add(tx, l.CapacityCost)
		for h := 0; h < b.sc.Horizon; h++ {
			f := b.m.AddVariable(FlowVar(l.Name, h), math.Inf(-1), math.Inf(1))
			b.m.AddConstraint("flowmax_"+l.Name+"_"+strconv.Itoa(h), lp.Expr{}.Add(f, 1).Add(tx, -1), lp.LessEqual, 0)
			b.m.AddConstraint("flowmin_"+l.Name+"_"+strconv.Itoa(h), lp.Expr{}.Add(f, -1).Add(tx, -1), lp.LessEqual, 0)
		}
	}
}

// balance adds generation + discharge + net inbound flow - charge = demand
// for every node and step.
func (b *costBuilder) balance() {
	for _, n := range b.sc.Nodes {
		for h := 0; h < b.sc.Horizon; h++ {
			var row lp.Expr
			for _, t := range b.sc.Technologies {
				if t.IsStorage() {
					row = row.Add(b.mustLookup(DischargeVar(t.Name, n.Name, h)), 1)
					row = row.Add(b.mustLookup(ChargeVar(t.Name, n.Name, h)), -1)
					continue
				}
				row = row.Add(b.mustLookup(GenerationVar(t.Name, n.Name, h)), 1)
			}
			for _, l := range b.sc.Links {
				switch n.Name {
				case l.To:
					row = row.Add(b.mustLookup(FlowVar(l.Name, h)), 1)
				case l.From:
					row = row.Add(b.mustLookup(FlowVar(l.Name, h)), -1)
				}
			}
			b.m.AddConstraint("balance_"+n.Name+"_"+strconv.Itoa(h), row, lp.Equal, n.Demand[h])
		}
	}
}

func (b *costBuilder) mustLookup(name string) lp.VarID {
	id, ok := b.m.Lookup(name)
	if !ok {
		panic("dispatch: undeclared variable " + name)
	}
	return id
}
