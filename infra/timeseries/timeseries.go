// Package timeseries reads the hourly profile and cost-forecast CSV files
// into plain float series.
package timeseries

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Column names consumed by the loaders.
const (
	DemandColumn       = "demand"
	ForecastYearColumn = "Year"
	ForecastCostColumn = "Predicted_Cost_USD_per_kWh"
)

// ErrMissingColumn is returned when a required column is absent.
var ErrMissingColumn = errors.New("missing column")

// LoadProfiles reads a profile CSV. Every numeric column becomes a series
// keyed by its header; columns without any number, such as timestamps, are
// skipped. The demand column is required and numeric columns may not have
// gaps.
func LoadProfiles(path string) (map[string][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	out, err := ReadProfiles(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// ReadProfiles is LoadProfiles on a reader.
func ReadProfiles(r io.Reader) (map[string][]float64, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.Float),
	)
	if df.Err != nil {
		return nil, df.Err
	}
	out := make(map[string][]float64)
	for _, name := range df.Names() {
		vals := df.Col(name).Float()
		missing := 0
		for _, v := range vals {
			if math.IsNaN(v) {
				missing++
			}
		}
		switch {
		case missing == len(vals):
			// not numeric
			continue
		case missing > 0:
			return nil, fmt.Errorf("column %s has %d empty or non-numeric cells", name, missing)
		}
		out[name] = vals
	}
	if _, ok := out[DemandColumn]; !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, DemandColumn)
	}
	return out, nil
}

// LoadForecast reads the battery cost forecast as cost per kWh by year.
func LoadForecast(path string) (map[int]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	out, err := ReadForecast(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

// ReadForecast is LoadForecast on a reader. Rows with an unparsable cost are
// skipped.
func ReadForecast(r io.Reader) (map[int]float64, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.WithTypes(map[string]series.Type{
			ForecastYearColumn: series.Int,
			ForecastCostColumn: series.Float,
		}),
	)
	if df.Err != nil {
		return nil, df.Err
	}
	names := make(map[string]bool)
	for _, n := range df.Names() {
		names[n] = true
	}
	for _, want := range []string{ForecastYearColumn, ForecastCostColumn} {
		if !names[want] {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, want)
		}
	}
	years, err := df.Col(ForecastYearColumn).Int()
	if err != nil {
		return nil, fmt.Errorf("column %s: %w", ForecastYearColumn, err)
	}
	costs := df.Col(ForecastCostColumn).Float()
	out := make(map[int]float64, len(years))
	for i, y := range years {
		if math.IsNaN(costs[i]) {
			continue
		}
		out[y] = costs[i]
	}
	if len(out) == 0 {
		return nil, errors.New("forecast has no usable rows")
	}
	return out, nil
}
