package results

import (
	"fmt"
	"math"

	"github.com/kilianp07/esom/core/dispatch"
	"github.com/kilianp07/esom/core/model"
	"github.com/kilianp07/esom/core/solver"
)

// Violation is an invariant that does not hold on a solution.
type Violation struct {
	Constraint string
	Excess     float64
}

func (v Violation) String() string { return fmt.Sprintf("%s off by %g", v.Constraint, v.Excess) }

// Check verifies energy balance, capacity limits and storage limits of a
// solved cost scenario. tol is relative to max(1, |reference value|).
func Check(sc *model.Scenario, sol solver.Solution, tol float64) []Violation {
	if sc.Objective == model.MaximizeBenefit || sol.Status != solver.StatusOptimal {
		return nil
	}
	var out []Violation
	over := func(name string, lhs, limit float64) {
		if ex := lhs - limit; ex > tol*math.Max(1, math.Abs(limit)) {
			out = append(out, Violation{Constraint: name, Excess: ex})
		}
	}
	v := sol.Value
	for _, n := range sc.Nodes {
		for h := 0; h < sc.Horizon; h++ {
			net := 0.0
			for _, t := range sc.Technologies {
				c := v(dispatch.CapacityVar(t.Name, n.Name))
				if t.IsStorage() {
					ch := v(dispatch.ChargeVar(t.Name, n.Name, h))
					dis := v(dispatch.DischargeVar(t.Name, n.Name, h))
					net += dis - ch
					over(fmt.Sprintf("soclim_%s_%s_%d", t.Name, n.Name, h), v(dispatch.SOCVar(t.Name, n.Name, h)), t.DurationHours*c)
					over(fmt.Sprintf("power_%s_%s_%d", t.Name, n.Name, h), ch+dis, c)
					continue
				}
				g := v(dispatch.GenerationVar(t.Name, n.Name, h))
				net += g
				over(fmt.Sprintf("caplim_%s_%s_%d", t.Name, n.Name, h), g, c*n.Availability[t.Name][h])
			}
			for _, l := range sc.Links {
				f := v(dispatch.FlowVar(l.Name, h))
				switch n.Name {
				case l.To:
					net += f
				case l.From:
					net -= f
				}
			}
			d := n.Demand[h]
			if ex := math.Abs(net - d); ex > tol*math.Max(1, d) {
				out = append(out, Violation{Constraint: fmt.Sprintf("balance_%s_%d", n.Name, h), Excess: ex})
			}
		}
	}
	return out
}

// LinearizationError reports an auxiliary effect variable that stayed below
// the min() it replaces while the total effect cap was not binding.
type LinearizationError struct {
	Variable string
	Value    float64
	Expected float64
}

func (e *LinearizationError) Error() string {
	return fmt.Sprintf("linearization of %s not tight: %g < %g", e.Variable, e.Value, e.Expected)
}

// CheckLinearization verifies that every auxiliary effect variable of a
// benefit scenario equals the min() expression it stands for, unless the
// total effect cap binds. Cost scenarios always pass.
func CheckLinearization(sc *model.Scenario, sol solver.Solution, tol float64) error {
	if sc.Objective != model.MaximizeBenefit || sol.Status != solver.StatusOptimal {
		return nil
	}
	f := sc.Flexibility
	st := f.Storage
	df := dispatch.StorageDurationFactor(st)
	gw := sol.Value(dispatch.StorageGWVar)
	storageWant := st.MaxEffect * df
	if st.SaturationGW > 0 {
		storageWant = math.Min(storageWant, gw/st.SaturationGW*df)
	} else {
		storageWant = 0
	}
	var dsm float64
	for _, o := range f.Demand.Options {
		dsm += sol.Value(dispatch.DemandGWVar(o.Name))
	}
	demandWant := math.Min(f.Demand.MaxEffect, f.Demand.EffectPerGW*dsm)

	se := sol.Value(dispatch.StorageEffectVar)
	de := sol.Value(dispatch.DemandEffectVar)
	if se+de >= f.MaxTotalEffect-tol {
		return nil
	}
	if se < storageWant-tol {
		return &LinearizationError{Variable: dispatch.StorageEffectVar, Value: se, Expected: storageWant}
	}
	if de < demandWant-tol {
		return &LinearizationError{Variable: dispatch.DemandEffectVar, Value: de, Expected: demandWant}
	}
	return nil
}
