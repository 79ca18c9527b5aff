// Package scenario derives model inputs from a shared reference system and
// runs batches of scenarios through the builder and solver.
package scenario

// Params is one scenario record of a run. Zero values fall back to the
// reference system.
type Params struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description,omitempty"`
	// Objective is "cost" (default) or "benefit".
	Objective string `json:"objective" yaml:"objective,omitempty"`

	Year    int `json:"year" yaml:"year,omitempty"`
	Horizon int `json:"horizon" yaml:"horizon,omitempty"` // 0 uses the full profile

	// Demand multipliers, see DemandScale.
	DemandScale     float64 `json:"demand_scale" yaml:"demand_scale,omitempty"`
	Electrification float64 `json:"electrification" yaml:"electrification,omitempty"`
	DemandGrowth    float64 `json:"demand_growth" yaml:"demand_growth,omitempty"`
	BaseYear        int     `json:"base_year" yaml:"base_year,omitempty"`

	// Capacity bounds technologies in MW. Benefit scenarios bound the
	// "storage" resource and demand-side options instead, in GW.
	Capacity []BoundSpec `json:"capacity" yaml:"capacity,omitempty"`
	// Disable forces the capacity of the listed technologies, or of benefit
	// scenario resources, to zero.
	Disable []string `json:"disable" yaml:"disable,omitempty"`

	// StorageDuration overrides the duration of every storage technology.
	StorageDuration float64 `json:"storage_duration" yaml:"storage_duration,omitempty"`
	// StorageCostPerKWh sets the storage capital cost; when nil and
	// StorageCostFromForecast is set the cost forecast of Year is used.
	StorageCostPerKWh       *float64 `json:"storage_cost_per_kwh" yaml:"storage_cost_per_kwh,omitempty"`
	StorageCostFromForecast bool     `json:"storage_cost_from_forecast" yaml:"storage_cost_from_forecast,omitempty"`
	CapitalRecovery         float64  `json:"capital_recovery" yaml:"capital_recovery,omitempty"`

	TransmissionMax *float64         `json:"transmission_max" yaml:"transmission_max,omitempty"`
	Renewable       *RenewableTarget `json:"renewable" yaml:"renewable,omitempty"`
	InitialSOCMode  string           `json:"initial_soc_mode" yaml:"initial_soc_mode,omitempty"`

	Flexibility *FlexibilityParams `json:"flexibility" yaml:"flexibility,omitempty"`
}

// BoundSpec bounds the capacity of a technology, at one node or everywhere.
type BoundSpec struct {
	Technology string   `json:"technology" yaml:"technology"`
	Node       string   `json:"node" yaml:"node,omitempty"`
	Min        *float64 `json:"min" yaml:"min,omitempty"`
	Max        *float64 `json:"max" yaml:"max,omitempty"`
}

// RenewableTarget derives weather-dependent capacity from a target share of
// demand, split between technologies by Mix.
type RenewableTarget struct {
	Share  float64            `json:"share" yaml:"share"`
	Margin float64            `json:"margin" yaml:"margin,omitempty"`
	Mix    map[string]float64 `json:"mix" yaml:"mix"`
}

// FlexibilityParams configures a benefit scenario.
type FlexibilityParams struct {
	// BaselineCurtailmentTWh is derived from the renewable target when 0.
	BaselineCurtailmentTWh float64 `json:"baseline_curtailment_twh" yaml:"baseline_curtailment_twh,omitempty"`
	CurtailmentValue       float64 `json:"curtailment_value" yaml:"curtailment_value,omitempty"`
	MaxTotalEffect         float64 `json:"max_total_effect" yaml:"max_total_effect,omitempty"`

	// StorageMaxGW defaults to 20 when nil; an explicit 0 excludes storage.
	StorageMaxGW          *float64 `json:"storage_max_gw" yaml:"storage_max_gw,omitempty"`
	StorageSaturationGW   float64  `json:"storage_saturation_gw" yaml:"storage_saturation_gw,omitempty"`
	StorageReferenceHours float64  `json:"storage_reference_hours" yaml:"storage_reference_hours,omitempty"`
	StorageMaxEffect      float64  `json:"storage_max_effect" yaml:"storage_max_effect,omitempty"`

	DemandMaxEffect   float64            `json:"demand_max_effect" yaml:"demand_max_effect,omitempty"`
	DemandEffectPerGW float64            `json:"demand_effect_per_gw" yaml:"demand_effect_per_gw,omitempty"`
	DemandOptions     []DemandOptionSpec `json:"demand_options" yaml:"demand_options,omitempty"`
}

// DemandOptionSpec is one demand-side resource of a benefit scenario.
type DemandOptionSpec struct {
	Name          string  `json:"name" yaml:"name"`
	MaxGW         float64 `json:"max_gw" yaml:"max_gw"`
	CostPerMWYear float64 `json:"cost_per_mw_year" yaml:"cost_per_mw_year"`
}

// SetDefaults fills the values used by the flexibility study.
func (f *FlexibilityParams) SetDefaults() {
	if f.CurtailmentValue == 0 {
		f.CurtailmentValue = 30
	}
	if f.MaxTotalEffect == 0 {
		f.MaxTotalEffect = 0.95
	}
	if f.StorageMaxGW == nil {
		v := 20.0
		f.StorageMaxGW = &v
	}
	if f.StorageSaturationGW == 0 {
		f.StorageSaturationGW = 15
	}
	if f.StorageReferenceHours == 0 {
		f.StorageReferenceHours = 8
	}
	if f.StorageMaxEffect == 0 {
		f.StorageMaxEffect = 0.70
	}
	if f.DemandMaxEffect == 0 {
		f.DemandMaxEffect = 0.30
	}
	if f.DemandEffectPerGW == 0 {
		f.DemandEffectPerGW = 0.025
	}
	if f.DemandOptions == nil {
		f.DemandOptions = []DemandOptionSpec{
			{Name: "industrial", MaxGW: 12, CostPerMWYear: 50_000},
			{Name: "prosumer", MaxGW: 4, CostPerMWYear: 100_000},
		}
	}
}

// TechnologySpec declares a technology of the reference system.
type TechnologySpec struct {
	Name string `json:"name" yaml:"name"`
	Kind string `json:"kind" yaml:"kind,omitempty"` // generator or storage
	// Profile names the capacity-factor column; empty means always
	// available.
	Profile string `json:"profile" yaml:"profile,omitempty"`
	// EmissionsProfile names a column whose first value overrides Emissions.
	EmissionsProfile string  `json:"emissions_profile" yaml:"emissions_profile,omitempty"`
	CapacityCost     float64 `json:"capacity_cost" yaml:"capacity_cost"`
	VariableCost     float64 `json:"variable_cost" yaml:"variable_cost,omitempty"`
	FuelCost         float64 `json:"fuel_cost" yaml:"fuel_cost,omitempty"`
	Emissions        float64 `json:"emissions" yaml:"emissions,omitempty"`
	Efficiency       float64 `json:"efficiency" yaml:"efficiency,omitempty"`
	DurationHours    float64 `json:"duration_hours" yaml:"duration_hours,omitempty"`
}

// NodeSpec declares a node and its scaling of the reference profiles.
type NodeSpec struct {
	Name        string  `json:"name" yaml:"name"`
	DemandScale float64 `json:"demand_scale" yaml:"demand_scale,omitempty"`
	// ProfileScale multiplies the capacity factor of a technology.
	ProfileScale map[string]float64 `json:"profile_scale" yaml:"profile_scale,omitempty"`
}

// LinkSpec declares a transmission link. Positive flow goes From -> To.
type LinkSpec struct {
	Name         string   `json:"name" yaml:"name"`
	From         string   `json:"from" yaml:"from"`
	To           string   `json:"to" yaml:"to"`
	CapacityCost float64  `json:"capacity_cost" yaml:"capacity_cost"`
	Max          *float64 `json:"max" yaml:"max,omitempty"`
}

// System is the reference system shared by every scenario of a run.
type System struct {
	Technologies   []TechnologySpec `json:"technologies" yaml:"technologies"`
	Nodes          []NodeSpec       `json:"nodes" yaml:"nodes"`
	Links          []LinkSpec       `json:"links" yaml:"links,omitempty"`
	InitialSOCMode string           `json:"initial_soc_mode" yaml:"initial_soc_mode,omitempty"`
	InitialSOC     float64          `json:"initial_soc" yaml:"initial_soc,omitempty"`
}
