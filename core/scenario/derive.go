package scenario

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/esom/core/dispatch"
)

// Default derivation parameters.
const (
	DefaultCapitalRecovery = 0.10
	DefaultRenewableMargin = 1.10
)

// DemandScale combines the demand multipliers of p:
// scale * electrification * (1+growth)^(year-base). Unset factors are 1.
func DemandScale(p Params) float64 {
	s := 1.0
	if p.DemandScale != 0 {
		s *= p.DemandScale
	}
	if p.Electrification != 0 {
		s *= p.Electrification
	}
	if p.DemandGrowth != 0 && p.Year > 0 && p.BaseYear > 0 {
		s *= math.Pow(1+p.DemandGrowth, float64(p.Year-p.BaseYear))
	}
	return s
}

// DeriveRenewableCapacity returns the weather-dependent capacity in GW needed
// to cover share of a demand of demandTWh: demandTWh / share * margin.
func DeriveRenewableCapacity(demandTWh, share, margin float64) (float64, error) {
	if share <= 0 || share > 1 {
		return 0, fmt.Errorf("renewable share must be in (0,1], got %v", share)
	}
	if margin == 0 {
		margin = DefaultRenewableMargin
	}
	if margin < 0 || demandTWh < 0 {
		return 0, fmt.Errorf("renewable margin and demand must be non-negative")
	}
	return demandTWh / share * margin, nil
}

// StorageCapacityCost annualizes a storage capital cost per kWh into a cost
// per MW of power capacity and year.
func StorageCapacityCost(costPerKWh, durationHours, capitalRecovery float64) float64 {
	return costPerKWh * 1000 * durationHours * capitalRecovery
}

// EnergyTWh sums an hourly MW series into TWh.
func EnergyTWh(series []float64) float64 {
	return floats.Sum(series) / dispatch.MWhPerTWh
}

// BaselineCurtailment returns the renewable energy in TWh that exceeds
// demand, summed over the hours both series cover.
func BaselineCurtailment(demand, vres []float64) float64 {
	n := min(len(demand), len(vres))
	surplus := make([]float64, n)
	floats.SubTo(surplus, vres[:n], demand[:n])
	for i, v := range surplus {
		if v < 0 {
			surplus[i] = 0
		}
	}
	return floats.Sum(surplus) / dispatch.MWhPerTWh
}

// Utilization returns the share in percent of demand served by renewable
// energy that is not curtailed, capped at 100.
func Utilization(demand, vres []float64) float64 {
	n := min(len(demand), len(vres))
	total := floats.Sum(demand[:n])
	if total <= 0 {
		return 0
	}
	used := floats.Sum(vres[:n]) - BaselineCurtailment(demand, vres)*dispatch.MWhPerTWh
	return math.Min(100, used/total*100)
}

// CostForecast maps years onto storage capital costs per kWh.
type CostForecast map[int]float64

// Cost returns the forecast of year, or of the closest forecast year when
// year is not covered. Ties go to the later year.
func (f CostForecast) Cost(year int) (float64, error) {
	if len(f) == 0 {
		return 0, fmt.Errorf("no storage cost forecast available")
	}
	if v, ok := f[year]; ok {
		return v, nil
	}
	years := make([]int, 0, len(f))
	for y := range f {
		years = append(years, y)
	}
	sort.Ints(years)
	best := years[0]
	for _, y := range years[1:] {
		if abs(y-year) <= abs(best-year) {
			best = y
		}
	}
	return f[best], nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
