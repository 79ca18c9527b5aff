package scenario

import (
	"fmt"
	"math"
	"sort"

	"github.com/kilianp07/esom/core/dispatch"
	"github.com/kilianp07/esom/core/model"
	"github.com/kilianp07/esom/infra/timeseries"
)

// Reference is the shared input of a run. Prepare never modifies it.
type Reference struct {
	System   System
	Profiles map[string][]float64
	Forecast CostForecast
}

// Derivation records the values Prepare computed for a scenario.
type Derivation struct {
	DemandScale            float64
	DemandTWh              float64
	RenewableCapacityGW    float64
	StorageCostPerKWh      float64
	StorageCapacityCost    float64
	BaselineCurtailmentTWh float64
}

// Prepare applies p to ref and returns a scenario with its own copies of
// every series. Problems with the input are reported as
// *model.SpecificationError.
func Prepare(ref Reference, p Params) (*model.Scenario, Derivation, error) {
	var d Derivation
	if p.Name == "" {
		return nil, d, model.Specf("", "scenario name is required")
	}
	obj, err := model.ParseObjectiveKind(p.Objective)
	if err != nil {
		return nil, d, model.Specf(p.Name, "%v", err)
	}
	modeName := p.InitialSOCMode
	if modeName == "" {
		modeName = ref.System.InitialSOCMode
	}
	mode, err := model.ParseInitialSOCMode(modeName)
	if err != nil {
		return nil, d, model.Specf(p.Name, "%v", err)
	}

	base, ok := ref.Profiles[timeseries.DemandColumn]
	if !ok || len(base) == 0 {
		return nil, d, model.Specf(p.Name, "reference profiles have no %s series", timeseries.DemandColumn)
	}
	horizon := p.Horizon
	if horizon == 0 {
		horizon = len(base)
	}
	if horizon < 0 || horizon > len(base) {
		return nil, d, model.Specf(p.Name, "horizon %d outside the %d available steps", horizon, len(base))
	}
	d.DemandScale = DemandScale(p)

	sc := &model.Scenario{
		Name:           p.Name,
		Objective:      obj,
		Horizon:        horizon,
		InitialSOCMode: mode,
		InitialSOC:     ref.System.InitialSOC,
	}
	if err := prepareNodes(ref, p, sc, base[:horizon], d.DemandScale); err != nil {
		return nil, d, err
	}
	for _, n := range sc.Nodes {
		d.DemandTWh += EnergyTWh(n.Demand)
	}

	if obj == model.MaximizeBenefit {
		if err := prepareFlexibility(ref, p, sc, &d); err != nil {
			return nil, d, err
		}
		return sc, d, nil
	}

	if err := prepareTechnologies(ref, p, sc, &d); err != nil {
		return nil, d, err
	}
	if err := prepareLinks(ref, p, sc); err != nil {
		return nil, d, err
	}
	if err := prepareBounds(ref, p, sc, &d); err != nil {
		return nil, d, err
	}
	return sc, d, nil
}

func prepareNodes(ref Reference, p Params, sc *model.Scenario, base []float64, scale float64) error {
	if len(ref.System.Nodes) == 0 {
		return model.Specf(p.Name, "reference system has no nodes")
	}
	for _, ns := range ref.System.Nodes {
		nodeScale := ns.DemandScale
		if nodeScale == 0 {
			nodeScale = 1
		}
		n := model.Node{
			Name:         ns.Name,
			Demand:       make([]float64, len(base)),
			Availability: make(map[string][]float64),
		}
		for h, v := range base {
			n.Demand[h] = v * nodeScale * scale
		}
		if sc.Objective == model.MinimizeCost {
			for _, ts := range ref.System.Technologies {
				if ts.Kind == model.Storage.String() {
					continue
				}
				series, err := availability(ref, p, ts, ns, len(base))
				if err != nil {
					return err
				}
				n.Availability[ts.Name] = series
			}
		}
		sc.Nodes = append(sc.Nodes, n)
	}
	return nil
}

// availability returns the capacity factor of ts at node ns. Scaled values
// may exceed 1.
func availability(ref Reference, p Params, ts TechnologySpec, ns NodeSpec, horizon int) ([]float64, error) {
	out := make([]float64, horizon)
	if ts.Profile == "" {
		for h := range out {
			out[h] = 1
		}
		return out, nil
	}
	col, ok := ref.Profiles[ts.Profile]
	if !ok {
		return nil, model.Specf(p.Name, "profile %s of %s not found", ts.Profile, ts.Name)
	}
	if len(col) < horizon {
		return nil, model.Specf(p.Name, "profile %s has %d steps, need %d", ts.Profile, len(col), horizon)
	}
	scale := 1.0
	if v, ok := ns.ProfileScale[ts.Name]; ok {
		scale = v
	}
	for h := range out {
		out[h] = col[h] * scale
	}
	return out, nil
}

func prepareTechnologies(ref Reference, p Params, sc *model.Scenario, d *Derivation) error {
	var storageCost *float64
	hasStorage := false
	for _, ts := range ref.System.Technologies {
		if ts.Kind == model.Storage.String() {
			hasStorage = true
		}
	}
	if hasStorage {
		cost, ok, err := storageCostPerKWh(ref, p)
		if err != nil {
			return err
		}
		if ok {
			storageCost = &cost
			d.StorageCostPerKWh = cost
		}
	}

	for _, ts := range ref.System.Technologies {
		kind, err := model.ParseTechKind(ts.Kind)
		if err != nil {
			return model.Specf(p.Name, "%v", err)
		}
		t := model.Technology{
			Name:          ts.Name,
			Kind:          kind,
			Weather:       ts.Profile != "",
			Profile:       ts.Profile,
			CapacityCost:  ts.CapacityCost,
			VariableCost:  ts.VariableCost,
			FuelCost:      ts.FuelCost,
			Emissions:     ts.Emissions,
			Efficiency:    ts.Efficiency,
			DurationHours: ts.DurationHours,
		}
		if ts.EmissionsProfile != "" {
			col, ok := ref.Profiles[ts.EmissionsProfile]
			if !ok || len(col) == 0 {
				return model.Specf(p.Name, "emissions profile %s of %s not found", ts.EmissionsProfile, ts.Name)
			}
			t.Emissions = col[0]
		}
		if t.IsStorage() {
			if p.StorageDuration > 0 {
				t.DurationHours = p.StorageDuration
			}
			if storageCost != nil {
				t.CapacityCost = StorageCapacityCost(*storageCost, t.DurationHours, capitalRecovery(p))
				d.StorageCapacityCost = t.CapacityCost
			}
		}
		sc.Technologies = append(sc.Technologies, t)
	}
	return nil
}

// storageCostPerKWh returns the explicit or forecast storage cost of p.
func storageCostPerKWh(ref Reference, p Params) (float64, bool, error) {
	switch {
	case p.StorageCostPerKWh != nil:
		return *p.StorageCostPerKWh, true, nil
	case p.StorageCostFromForecast:
		if p.Year == 0 {
			return 0, false, model.Specf(p.Name, "storage cost forecast needs a year")
		}
		v, err := ref.Forecast.Cost(p.Year)
		if err != nil {
			return 0, false, model.Specf(p.Name, "%v", err)
		}
		return v, true, nil
	}
	return 0, false, nil
}

func capitalRecovery(p Params) float64 {
	if p.CapitalRecovery > 0 {
		return p.CapitalRecovery
	}
	return DefaultCapitalRecovery
}

func prepareLinks(ref Reference, p Params, sc *model.Scenario) error {
	for _, ls := range ref.System.Links {
		l := model.Link{
			Name:         ls.Name,
			From:         ls.From,
			To:           ls.To,
			CapacityCost: ls.CapacityCost,
		}
		if ls.Max != nil {
			l.Bounds = model.AtMost(*ls.Max)
		}
		if p.TransmissionMax != nil {
			if *p.TransmissionMax < 0 {
				return model.Specf(p.Name, "transmission_max must be non-negative")
			}
			l.Bounds = l.Bounds.Intersect(model.AtMost(*p.TransmissionMax))
		}
		sc.Links = append(sc.Links, l)
	}
	return nil
}

func prepareBounds(ref Reference, p Params, sc *model.Scenario, d *Derivation) error {
	for _, b := range p.Capacity {
		if _, ok := sc.Technology(b.Technology); !ok {
			return model.Specf(p.Name, "capacity bound references unknown technology %q", b.Technology)
		}
		sc.Bounds = append(sc.Bounds, model.CapacityBound{
			Technology: b.Technology,
			Node:       b.Node,
			Bounds:     model.Bounds{Min: b.Min, Max: b.Max},
		})
	}

	if r := p.Renewable; r != nil {
		bounds, gw, err := renewableBounds(p, sc, r, d.DemandTWh)
		if err != nil {
			return err
		}
		d.RenewableCapacityGW = gw
		sc.Bounds = append(sc.Bounds, bounds...)
	}

	for _, name := range p.Disable {
		if _, ok := sc.Technology(name); !ok {
			return model.Specf(p.Name, "cannot disable unknown technology %q", name)
		}
		sc.Bounds = append(sc.Bounds, model.CapacityBound{Technology: name, Bounds: model.Fixed(0)})
	}
	return nil
}

// renewableBounds fixes the capacity of each technology of the mix, split
// between nodes by their share of demand.
func renewableBounds(p Params, sc *model.Scenario, r *RenewableTarget, demandTWh float64) ([]model.CapacityBound, float64, error) {
	gw, err := DeriveRenewableCapacity(demandTWh, r.Share, r.Margin)
	if err != nil {
		return nil, 0, model.Specf(p.Name, "%v", err)
	}
	if len(r.Mix) == 0 {
		return nil, 0, model.Specf(p.Name, "renewable target needs a technology mix")
	}
	var out []model.CapacityBound
	for _, name := range sortedKeys(r.Mix) {
		t, ok := sc.Technology(name)
		if !ok || t.IsStorage() {
			return nil, 0, model.Specf(p.Name, "renewable mix references unknown generator %q", name)
		}
		total := gw * dispatch.MWPerGW * r.Mix[name]
		for _, n := range sc.Nodes {
			share := 1.0 / float64(len(sc.Nodes))
			if demandTWh > 0 {
				share = EnergyTWh(n.Demand) / demandTWh
			}
			out = append(out, model.CapacityBound{Technology: name, Node: n.Name, Bounds: model.Fixed(total * share)})
		}
	}
	return out, gw, nil
}

func prepareFlexibility(ref Reference, p Params, sc *model.Scenario, d *Derivation) error {
	fp := FlexibilityParams{}
	if p.Flexibility != nil {
		fp = *p.Flexibility
		fp.DemandOptions = append([]DemandOptionSpec(nil), p.Flexibility.DemandOptions...)
	}
	fp.SetDefaults()

	cost, ok, err := storageCostPerKWh(ref, p)
	if err != nil {
		return err
	}
	if !ok {
		return model.Specf(p.Name, "benefit scenario needs storage_cost_per_kwh or storage_cost_from_forecast")
	}
	d.StorageCostPerKWh = cost

	baseline := fp.BaselineCurtailmentTWh
	if baseline == 0 {
		baseline, err = derivedCurtailment(ref, p, sc, d)
		if err != nil {
			return err
		}
	}
	d.BaselineCurtailmentTWh = baseline

	duration := p.StorageDuration
	if duration == 0 {
		duration = fp.StorageReferenceHours
	}
	crf := capitalRecovery(p)
	d.StorageCapacityCost = StorageCapacityCost(cost, duration, crf)

	f := &model.Flexibility{
		BaselineCurtailmentTWh: baseline,
		CurtailmentValue:       fp.CurtailmentValue,
		MaxTotalEffect:         fp.MaxTotalEffect,
		Storage: model.StorageFlexibility{
			MaxGW:           *fp.StorageMaxGW,
			DurationHours:   duration,
			CostPerKWh:      cost,
			CapitalRecovery: crf,
			SaturationGW:    fp.StorageSaturationGW,
			ReferenceHours:  fp.StorageReferenceHours,
			MaxEffect:       fp.StorageMaxEffect,
		},
		Demand: model.DemandFlexibility{
			MaxEffect:   fp.DemandMaxEffect,
			EffectPerGW: fp.DemandEffectPerGW,
		},
	}
	for _, o := range fp.DemandOptions {
		f.Demand.Options = append(f.Demand.Options, model.DemandOption{
			Name:          o.Name,
			MaxGW:         o.MaxGW,
			CostPerMWYear: o.CostPerMWYear,
		})
	}
	if err := flexibilityBounds(p, f); err != nil {
		return err
	}
	sc.Flexibility = f
	return nil
}

// flexibilityBounds applies the capacity bounds and disable list of p to the
// storage and demand-side resources. Bounds are in GW and system-wide.
func flexibilityBounds(p Params, f *model.Flexibility) error {
	resource := func(name string) (lo, hi *float64, ok bool) {
		if name == dispatch.FlexStorageName {
			return &f.Storage.MinGW, &f.Storage.MaxGW, true
		}
		for i := range f.Demand.Options {
			if o := &f.Demand.Options[i]; o.Name == name {
				return &o.MinGW, &o.MaxGW, true
			}
		}
		return nil, nil, false
	}
	for _, b := range p.Capacity {
		lo, hi, ok := resource(b.Technology)
		if !ok {
			return model.Specf(p.Name, "capacity bound references unknown flexibility resource %q", b.Technology)
		}
		if b.Node != "" {
			return model.Specf(p.Name, "flexibility resource %s is system-wide, got node %q", b.Technology, b.Node)
		}
		if b.Min != nil {
			*lo = math.Max(*lo, *b.Min)
		}
		if b.Max != nil {
			*hi = math.Min(*hi, *b.Max)
		}
	}
	for _, name := range p.Disable {
		lo, hi, ok := resource(name)
		if !ok {
			return model.Specf(p.Name, "cannot disable unknown flexibility resource %q", name)
		}
		*lo, *hi = 0, 0
	}
	return nil
}

// derivedCurtailment computes the curtailment of the renewable target
// against the system demand when no flexibility is available.
func derivedCurtailment(ref Reference, p Params, sc *model.Scenario, d *Derivation) (float64, error) {
	r := p.Renewable
	if r == nil {
		return 0, model.Specf(p.Name, "benefit scenario needs baseline_curtailment_twh or a renewable target")
	}
	gw, err := DeriveRenewableCapacity(d.DemandTWh, r.Share, r.Margin)
	if err != nil {
		return 0, model.Specf(p.Name, "%v", err)
	}
	d.RenewableCapacityGW = gw

	demand := make([]float64, sc.Horizon)
	for _, n := range sc.Nodes {
		for h, v := range n.Demand {
			demand[h] += v
		}
	}
	vres := make([]float64, sc.Horizon)
	for _, name := range sortedKeys(r.Mix) {
		ts, ok := techSpec(ref.System, name)
		if !ok {
			return 0, model.Specf(p.Name, "renewable mix references unknown technology %q", name)
		}
		series, err := availability(ref, p, ts, NodeSpec{}, sc.Horizon)
		if err != nil {
			return 0, err
		}
		capMW := gw * dispatch.MWPerGW * r.Mix[name]
		for h, cf := range series {
			vres[h] += capMW * cf
		}
	}
	return BaselineCurtailment(demand, vres), nil
}

func techSpec(s System, name string) (TechnologySpec, bool) {
	for _, t := range s.Technologies {
		if t.Name == name {
			return t, true
		}
	}
	return TechnologySpec{}, false
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String summarizes the derivation for logs.
func (d Derivation) String() string {
	return fmt.Sprintf("demand_scale=%.4g demand_twh=%.4g vres_gw=%.4g storage_cost=%.4g baseline_twh=%.4g",
		d.DemandScale, d.DemandTWh, d.RenewableCapacityGW, d.StorageCapacityCost, d.BaselineCurtailmentTWh)
}
