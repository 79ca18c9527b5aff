package dispatch

import (
	"math"

	"github.com/kilianp07/esom/core/lp"
	"github.com/kilianp07/esom/core/model"
)

// Unit conversions of the flexibility-benefit model. Its objective is
// expressed in millions of the scenario currency.
const (
	MoneyUnit = 1e6 // currency per objective unit
	MWhPerTWh = 1e6
	KWhPerGWh = 1e6
	MWPerGW   = 1e3
)

// StorageDurationFactor returns min(1, duration/reference), the share of the
// storage effect reachable with the given duration.
func StorageDurationFactor(s model.StorageFlexibility) float64 {
	if s.ReferenceHours <= 0 {
		return 1
	}
	return math.Min(1, s.DurationHours/s.ReferenceHours)
}

// buildFlexibility maximizes avoided curtailment value minus annualized
// flexibility cost. The min() effectiveness curves are replaced by one
// auxiliary variable per clause bounded above by each term of the min; the
// auxiliary variable carries a positive objective coefficient so the optimum
// pushes it onto the smallest term unless the total effect cap binds.
func buildFlexibility(sc *model.Scenario) *lp.Model {
	f := sc.Flexibility
	m := lp.NewModel(sc.Name, lp.Maximize)

	// value of one unit of total effect, in objective units
	effectValue := f.BaselineCurtailmentTWh * MWhPerTWh * f.CurtailmentValue / MoneyUnit

	var obj lp.Expr
	st := f.Storage
	gw := m.AddVariable(StorageGWVar, st.MinGW, st.MaxGW)
	// annual cost of one GW: GW * duration -> GWh -> kWh * cost * recovery
	storageCost := st.DurationHours * KWhPerGWh * st.CostPerKWh * st.CapitalRecovery / MoneyUnit
	obj = obj.Add(gw, -storageCost)

	se := m.AddVariable(StorageEffectVar, 0, math.Inf(1))
	df := StorageDurationFactor(st)
	m.AddConstraint("storage_effect_max", lp.Expr{}.Add(se, 1), lp.LessEqual, st.MaxEffect*df)
	if st.SaturationGW > 0 {
		m.AddConstraint("storage_effect_scale", lp.Expr{}.Add(se, 1).Add(gw, -df/st.SaturationGW), lp.LessEqual, 0)
	} else {
		m.AddConstraint("storage_effect_scale", lp.Expr{}.Add(se, 1), lp.LessEqual, 0)
	}
	obj = obj.Add(se, effectValue)

	de := m.AddVariable(DemandEffectVar, 0, math.Inf(1))
	d := f.Demand
	m.AddConstraint("demand_effect_max", lp.Expr{}.Add(de, 1), lp.LessEqual, d.MaxEffect)
	scale := lp.Expr{}.Add(de, 1)
	for _, o := range d.Options {
		id := m.AddVariable(DemandGWVar(o.Name), o.MinGW, o.MaxGW)
		scale = scale.Add(id, -d.EffectPerGW)
		obj = obj.Add(id, -o.CostPerMWYear*MWPerGW/MoneyUnit)
	}
	m.AddConstraint("demand_effect_scale", scale, lp.LessEqual, 0)
	obj = obj.Add(de, effectValue)

	m.AddConstraint("total_effect_max", lp.Expr{}.Add(se, 1).Add(de, 1), lp.LessEqual, f.MaxTotalEffect)
	m.SetObjective(obj, 0)
	return m
}
